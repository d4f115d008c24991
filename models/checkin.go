package models

import "time"

// CheckIn stores one row per successful daily check-in.
// CheckinDay is the calendar day in the canonical app timezone
// ("2006-01-02"); the unique (user_id, checkin_day) index makes a second
// same-day insert fail at the database instead of racing the streak
// read-modify-write.
type CheckIn struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index:idx_checkins_user_day,unique;not null" json:"user_id"`
	CheckinDay     string    `gorm:"index:idx_checkins_user_day,unique;size:10;not null" json:"checkin_day"`
	CheckinAt      time.Time `gorm:"not null" json:"checkin_at"`
	KarmaAwarded   int       `json:"karma_awarded"`
	StreakAchieved int       `json:"streak_achieved"`
	CreatedAt      time.Time `json:"created_at"`
}
