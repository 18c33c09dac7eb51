// services/streak_service.go - Daily activity streaks
package services

import (
	"time"

	"skaila/config"
	"skaila/database"
	"skaila/models"
)

// TouchStreak updates the streak for a user access at the given
// instant. Idempotent within a day. A one day gap continues the
// streak; longer gaps reset it to 1 unless a streak shield covers the
// miss. Milestone days pay a bonus through the XP engine with source
// streak, which bypasses daily caps.
func TouchStreak(userID uint, now time.Time) {
	mu := lockUser(userID)
	mu.Lock()

	db := database.GetDB()
	state, err := getOrCreateState(db, userID)
	if err != nil {
		mu.Unlock()
		return
	}

	milestone := 0
	today := dateOf(now)
	if state.LastAccess == nil {
		state.StreakDays = 1
	} else {
		switch daysBetween(dateOf(state.LastAccess.UTC()), today) {
		case 0:
			state.LastAccess = &now
			db.Save(state)
			mu.Unlock()
			return
		case 1:
			state.StreakDays++
			if _, ok := config.StreakMilestones[state.StreakDays]; ok {
				milestone = state.StreakDays
			}
		default:
			if consumeStreakShield(userID, now) {
				state.StreakDays++
			} else {
				state.StreakDays = 1
			}
		}
	}

	if state.StreakDays > state.MaxStreak {
		state.MaxStreak = state.StreakDays
	}
	state.LastAccess = &now
	db.Save(state)

	// Award takes the user lock itself, release before paying out.
	mu.Unlock()

	if milestone > 0 {
		bonus := config.StreakMilestones[milestone]
		AwardStreakBonus(userID, bonus, models.JSONMap{"streak_days": milestone})
		GetNotifier().Notify(userID, "streak_milestone", "Streak!",
			"Serie di giorni consecutivi raggiunta",
			models.JSONMap{"streak_days": milestone, "bonus_xp": bonus})
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// consumeStreakShield uses up an unexpired streak_shield power-up if
// the user holds one.
func consumeStreakShield(userID uint, now time.Time) bool {
	db := database.GetDB()
	var shield models.UserPowerUp
	err := db.Joins("PowerUp").
		Where("user_power_ups.user_id = ? AND user_power_ups.expires_at > ?", userID, now).
		Where(`"PowerUp".effect = ?`, "streak_shield").
		First(&shield).Error
	if err != nil {
		return false
	}
	db.Delete(&shield)
	return true
}
