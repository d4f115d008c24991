package models

import "time"

// Streak holds the per-user streak counters, one row per user.
// LongestStreak >= CurrentStreak and TotalDays >= CurrentStreak hold after
// every update; CurrentStreak drops to zero exactly when the last activity
// is two or more calendar days old at evaluation time.
type Streak struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak   int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak   int        `gorm:"not null;default:0" json:"longest_streak"`
	TotalDays       int        `gorm:"not null;default:0" json:"total_days"`
	LastActivity    *time.Time `json:"last_activity"`
	StreakStartDate *time.Time `json:"streak_start_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
