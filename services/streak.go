package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mymandir/mandir-api/models"
)

// ErrAlreadyCheckedIn is returned when a user checks in twice on the same
// calendar day.
var ErrAlreadyCheckedIn = errors.New("already checked in today")

// Badge is an achievement unlocked at a streak threshold.
type Badge struct {
	Threshold int    `json:"threshold"`
	Label     string `json:"label"`
}

var achievementTiers = []Badge{
	{1, "Pratham Kadam"},
	{3, "Tridin Sadhak"},
	{7, "Saptah Sadhana"},
	{15, "Ardhamaas Bhakt"},
	{30, "Maas Sadhana"},
	{60, "Dvimaas Tapasvi"},
	{100, "Shatdin Yogi"},
	{365, "Varsh Bhakt"},
}

// CheckInResult is what a successful daily check-in returns to the client.
type CheckInResult struct {
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	TotalDays     int     `json:"total_days"`
	KarmaAwarded  int     `json:"karma_awarded"`
	KarmaPoints   int     `json:"karma_points"`
	Achievements  []Badge `json:"achievements"`
}

// StreakService owns the per-user streak counters and the daily check-in
// transaction.
type StreakService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewStreakService creates a service evaluating calendar days in loc.
func NewStreakService(db *gorm.DB, loc *time.Location) *StreakService {
	return &StreakService{db: db, loc: loc, now: time.Now}
}

// NewStreakServiceAt is NewStreakService with an injected clock.
func NewStreakServiceAt(db *gorm.DB, loc *time.Location, now func() time.Time) *StreakService {
	return &StreakService{db: db, loc: loc, now: now}
}

// CalculateStreak reports whether lastActivity keeps a streak alive at now:
// 1 when lastActivity falls on today's or yesterday's calendar date in loc,
// 0 for anything older or in the future.
func CalculateStreak(lastActivity, now time.Time, loc *time.Location) int {
	diff := daysApart(lastActivity, now, loc)
	if diff == 0 || diff == 1 {
		return 1
	}
	return 0
}

// daysApart counts whole calendar days from a to b in loc (negative when a
// is after b).
func daysApart(a, b time.Time, loc *time.Location) int {
	al := a.In(loc)
	bl := b.In(loc)
	ad := time.Date(al.Year(), al.Month(), al.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(bl.Year(), bl.Month(), bl.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// StreakAchievements returns every badge whose threshold the streak has
// reached. Cumulative: the result for n is a subset of the result for m
// whenever n <= m.
func StreakAchievements(streak int) []Badge {
	badges := []Badge{}
	for _, tier := range achievementTiers {
		if streak >= tier.Threshold {
			badges = append(badges, tier)
		}
	}
	return badges
}

// CalculateKarmaPoints derives the gamification score from streak length:
// 10 per day plus flat additive bonuses at 7, 30 and 100 days.
func CalculateKarmaPoints(streak int) int {
	if streak <= 0 {
		return 0
	}
	points := streak * 10
	if streak >= 7 {
		points += 50
	}
	if streak >= 30 {
		points += 200
	}
	if streak >= 100 {
		points += 500
	}
	return points
}

// GetStreakData reads the user's streak record. Returns nil without error
// when the user has never checked in.
func (s *StreakService) GetStreakData(userID uint) (*models.Streak, error) {
	var rec models.Streak
	err := s.db.Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateStreak writes newValue as the current streak: longest is kept
// monotonic, total days is incremented, and the streak start date resets
// when a fresh run begins.
func (s *StreakService) UpdateStreak(userID uint, newValue int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.updateStreakTx(tx, userID, newValue)
	})
}

func (s *StreakService) updateStreakTx(tx *gorm.DB, userID uint, newValue int) error {
	now := s.now()

	var rec models.Streak
	err := tx.Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = models.Streak{UserID: userID}
		err = nil
	}
	if err != nil {
		return err
	}

	startsFresh := rec.CurrentStreak == 0 || rec.StreakStartDate == nil
	rec.CurrentStreak = newValue
	if newValue > rec.LongestStreak {
		rec.LongestStreak = newValue
	}
	rec.TotalDays++
	rec.LastActivity = &now
	if startsFresh {
		start := now
		rec.StreakStartDate = &start
	}
	return tx.Save(&rec).Error
}

// ResetStreak zeroes the current streak and refreshes last activity while
// keeping longest streak, total days and the start date for history.
func (s *StreakService) ResetStreak(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.resetStreakTx(tx, userID)
	})
}

func (s *StreakService) resetStreakTx(tx *gorm.DB, userID uint) error {
	now := s.now()

	var rec models.Streak
	err := tx.Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = models.Streak{UserID: userID}
		err = nil
	}
	if err != nil {
		return err
	}

	rec.CurrentStreak = 0
	rec.LastActivity = &now
	return tx.Save(&rec).Error
}

// CheckAndUpdateStreak records today's check-in for the user inside one
// transaction. A same-day duplicate returns ErrAlreadyCheckedIn; the unique
// (user_id, checkin_day) index on check_ins backstops concurrent duplicates.
// A gap of two or more days zeroes the streak and returns a zero result.
func (s *StreakService) CheckAndUpdateStreak(userID uint) (*CheckInResult, error) {
	now := s.now()
	today := now.In(s.loc).Format("2006-01-02")

	var result *CheckInResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.Streak
		err := tx.Where("user_id = ?", userID).First(&rec).Error
		hasRecord := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		newStreak := 1
		if hasRecord && rec.LastActivity != nil {
			if daysApart(*rec.LastActivity, now, s.loc) == 0 {
				return ErrAlreadyCheckedIn
			}
			if CalculateStreak(*rec.LastActivity, now, s.loc) == 1 {
				newStreak = rec.CurrentStreak + 1
			} else {
				// Streak broken: zero it without counting today.
				if err := s.resetStreakTx(tx, userID); err != nil {
					return err
				}
				result = &CheckInResult{
					LongestStreak: rec.LongestStreak,
					TotalDays:     rec.TotalDays,
					Achievements:  StreakAchievements(0),
				}
				return nil
			}
		}

		awarded := CalculateKarmaPoints(newStreak) - CalculateKarmaPoints(newStreak-1)
		checkIn := models.CheckIn{
			UserID:         userID,
			CheckinDay:     today,
			CheckinAt:      now,
			KarmaAwarded:   awarded,
			StreakAchieved: newStreak,
		}
		if err := tx.Create(&checkIn).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCheckedIn
			}
			return err
		}

		if err := s.updateStreakTx(tx, userID, newStreak); err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("karma_points", gorm.Expr("karma_points + ?", awarded)).Error; err != nil {
			return err
		}

		var updated models.Streak
		if err := tx.Where("user_id = ?", userID).First(&updated).Error; err != nil {
			return err
		}
		result = &CheckInResult{
			CurrentStreak: updated.CurrentStreak,
			LongestStreak: updated.LongestStreak,
			TotalDays:     updated.TotalDays,
			KarmaAwarded:  awarded,
			KarmaPoints:   CalculateKarmaPoints(updated.CurrentStreak),
			Achievements:  StreakAchievements(updated.CurrentStreak),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
