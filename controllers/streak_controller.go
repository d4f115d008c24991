package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mymandir/mandir-api/services"
	"github.com/mymandir/mandir-api/utils"
)

// StreakController handles daily check-in and streak endpoints.
type StreakController struct {
	streaks *services.StreakService
}

// NewStreakController creates a new controller instance.
func NewStreakController(streaks *services.StreakService) *StreakController {
	return &StreakController{streaks: streaks}
}

// CheckIn records today's check-in and returns the updated counters.
func (s *StreakController) CheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result, err := s.streaks.CheckAndUpdateStreak(userID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyCheckedIn) {
			utils.Error(ctx, http.StatusBadRequest, 40030, "already checked in today")
			return
		}
		utils.Sugar.Errorf("check-in failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to record check-in")
		return
	}

	utils.Success(ctx, result)
}

// Status returns the user's streak record, zeroed when absent.
func (s *StreakController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	rec, err := s.streaks.GetStreakData(userID)
	if err != nil {
		utils.Sugar.Errorf("streak status failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load streak")
		return
	}
	if rec == nil {
		utils.Success(ctx, gin.H{
			"current_streak": 0,
			"longest_streak": 0,
			"total_days":     0,
			"karma_points":   0,
		})
		return
	}

	utils.Success(ctx, gin.H{
		"current_streak":    rec.CurrentStreak,
		"longest_streak":    rec.LongestStreak,
		"total_days":        rec.TotalDays,
		"last_activity":     rec.LastActivity,
		"streak_start_date": rec.StreakStartDate,
		"karma_points":      services.CalculateKarmaPoints(rec.CurrentStreak),
	})
}

// Achievements returns the badges unlocked by the user's current streak, or
// by an explicit ?streak= value for previewing upcoming tiers.
func (s *StreakController) Achievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	streak := 0
	if raw := ctx.Query("streak"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			utils.Error(ctx, http.StatusBadRequest, 40031, "invalid streak value")
			return
		}
		streak = v
	} else {
		rec, err := s.streaks.GetStreakData(userID)
		if err != nil {
			utils.Sugar.Errorf("achievements lookup failed for user %d: %v", userID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load streak")
			return
		}
		if rec != nil {
			streak = rec.CurrentStreak
		}
	}

	utils.Success(ctx, gin.H{
		"streak":       streak,
		"achievements": services.StreakAchievements(streak),
		"karma_points": services.CalculateKarmaPoints(streak),
	})
}
