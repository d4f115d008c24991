package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mymandir/mandir-api/models"
)

var kolkata = time.FixedZone("IST", 5*3600+1800)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Streak{}, &models.CheckIn{}))
	return db
}

func newTestService(t *testing.T, now time.Time) (*StreakService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewStreakService(db, kolkata)
	svc.now = func() time.Time { return now }
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	user := models.User{Username: "devotee", Email: "devotee@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestCalculateStreak(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 30, 0, 0, kolkata)

	tests := []struct {
		name string
		last time.Time
		want int
	}{
		{"same day earlier hour", time.Date(2026, time.March, 10, 1, 0, 0, 0, kolkata), 1},
		{"same day later hour", time.Date(2026, time.March, 10, 23, 0, 0, 0, kolkata), 1},
		{"yesterday", time.Date(2026, time.March, 9, 22, 0, 0, 0, kolkata), 1},
		{"two days ago", time.Date(2026, time.March, 8, 9, 30, 0, 0, kolkata), 0},
		{"a week ago", time.Date(2026, time.March, 3, 9, 30, 0, 0, kolkata), 0},
		{"tomorrow", time.Date(2026, time.March, 11, 0, 30, 0, 0, kolkata), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateStreak(tt.last, now, kolkata))
		})
	}
}

func TestCalculateStreakMonthBoundary(t *testing.T) {
	// Feb 28 is "yesterday" on Mar 1 in a non-leap year.
	now := time.Date(2026, time.March, 1, 6, 0, 0, 0, kolkata)
	last := time.Date(2026, time.February, 28, 23, 50, 0, 0, kolkata)
	assert.Equal(t, 1, CalculateStreak(last, now, kolkata))
}

func TestCalculateStreakUsesCanonicalTimezone(t *testing.T) {
	// 20:00 UTC on Mar 9 is already Mar 10 in IST, so it counts as "today"
	// against an IST morning on Mar 10.
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata)
	last := time.Date(2026, time.March, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, CalculateStreak(last, now, kolkata))
}

func TestStreakAchievementsCumulative(t *testing.T) {
	assert.Empty(t, StreakAchievements(0))
	assert.Len(t, StreakAchievements(1), 1)
	assert.Len(t, StreakAchievements(7), 3)
	assert.Len(t, StreakAchievements(365), 8)

	// Every badge set is a prefix of the next larger one.
	prev := []Badge{}
	for n := 0; n <= 400; n++ {
		cur := StreakAchievements(n)
		require.GreaterOrEqual(t, len(cur), len(prev), "streak %d", n)
		for i := range prev {
			require.Equal(t, prev[i], cur[i], "streak %d", n)
		}
		prev = cur
	}
}

func TestCalculateKarmaPoints(t *testing.T) {
	tests := []struct {
		streak int
		want   int
	}{
		{0, 0},
		{1, 10},
		{6, 60},
		{7, 120},  // +50 bonus kicks in
		{29, 340},
		{30, 550}, // +200 bonus
		{99, 1240},
		{100, 1750}, // +500 bonus
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateKarmaPoints(tt.streak), "streak %d", tt.streak)
	}
}

func TestGetStreakDataFreshUser(t *testing.T) {
	svc, db := newTestService(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata))
	userID := seedUser(t, db)

	rec, err := svc.GetStreakData(userID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCheckAndUpdateStreakFirstCheckin(t *testing.T) {
	svc, db := newTestService(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata))
	userID := seedUser(t, db)

	result, err := svc.CheckAndUpdateStreak(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.LongestStreak)
	assert.Equal(t, 1, result.TotalDays)
	assert.Equal(t, 10, result.KarmaAwarded)
	assert.Len(t, result.Achievements, 1)

	rec, err := svc.GetStreakData(userID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.CurrentStreak)
	assert.NotNil(t, rec.StreakStartDate)

	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	assert.Equal(t, 10, user.KarmaPoints)
}

func TestCheckAndUpdateStreakExtendsFromYesterday(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata)
	svc, db := newTestService(t, now)
	userID := seedUser(t, db)

	yesterday := now.AddDate(0, 0, -1)
	start := now.AddDate(0, 0, -5)
	require.NoError(t, db.Create(&models.Streak{
		UserID:          userID,
		CurrentStreak:   5,
		LongestStreak:   5,
		TotalDays:       20,
		LastActivity:    &yesterday,
		StreakStartDate: &start,
	}).Error)

	result, err := svc.CheckAndUpdateStreak(userID)
	require.NoError(t, err)
	assert.Equal(t, 6, result.CurrentStreak)
	assert.Equal(t, 6, result.LongestStreak)
	assert.Equal(t, 21, result.TotalDays)
}

func TestCheckAndUpdateStreakGapResets(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata)
	svc, db := newTestService(t, now)
	userID := seedUser(t, db)

	threeDaysAgo := now.AddDate(0, 0, -3)
	require.NoError(t, db.Create(&models.Streak{
		UserID:        userID,
		CurrentStreak: 5,
		LongestStreak: 9,
		TotalDays:     20,
		LastActivity:  &threeDaysAgo,
	}).Error)

	result, err := svc.CheckAndUpdateStreak(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 9, result.LongestStreak, "longest streak survives a reset")
	assert.Equal(t, 20, result.TotalDays, "a reset is not a check-in")

	rec, err := svc.GetStreakData(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.CurrentStreak)
}

func TestCheckAndUpdateStreakSameDayRejected(t *testing.T) {
	svc, db := newTestService(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata))
	userID := seedUser(t, db)

	_, err := svc.CheckAndUpdateStreak(userID)
	require.NoError(t, err)

	_, err = svc.CheckAndUpdateStreak(userID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	rec, err := svc.GetStreakData(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CurrentStreak, "duplicate must not double-increment")
	assert.Equal(t, 1, rec.TotalDays)
}

func TestCheckAndUpdateStreakUniqueIndexBackstop(t *testing.T) {
	// A racing writer already inserted today's check-in row while this
	// transaction still sees yesterday's last activity; the unique index
	// must reject the second insert.
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata)
	svc, db := newTestService(t, now)
	userID := seedUser(t, db)

	yesterday := now.AddDate(0, 0, -1)
	require.NoError(t, db.Create(&models.Streak{
		UserID:        userID,
		CurrentStreak: 2,
		LongestStreak: 2,
		TotalDays:     2,
		LastActivity:  &yesterday,
	}).Error)
	require.NoError(t, db.Create(&models.CheckIn{
		UserID:     userID,
		CheckinDay: now.In(kolkata).Format("2006-01-02"),
		CheckinAt:  now,
	}).Error)

	_, err := svc.CheckAndUpdateStreak(userID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestUpdateStreakLongestMonotonic(t *testing.T) {
	svc, db := newTestService(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata))
	userID := seedUser(t, db)

	for _, v := range []int{3, 5, 2} {
		require.NoError(t, svc.UpdateStreak(userID, v))
	}

	rec, err := svc.GetStreakData(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CurrentStreak)
	assert.Equal(t, 5, rec.LongestStreak)
	assert.Equal(t, 3, rec.TotalDays)
}

func TestResetStreakKeepsHistory(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, kolkata)
	svc, db := newTestService(t, now)
	userID := seedUser(t, db)

	start := now.AddDate(0, 0, -9)
	last := now.AddDate(0, 0, -4)
	require.NoError(t, db.Create(&models.Streak{
		UserID:          userID,
		CurrentStreak:   4,
		LongestStreak:   8,
		TotalDays:       15,
		LastActivity:    &last,
		StreakStartDate: &start,
	}).Error)

	require.NoError(t, svc.ResetStreak(userID))

	rec, err := svc.GetStreakData(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.CurrentStreak)
	assert.Equal(t, 8, rec.LongestStreak)
	assert.Equal(t, 15, rec.TotalDays)
	require.NotNil(t, rec.LastActivity)
	assert.True(t, rec.LastActivity.Equal(now))
}
