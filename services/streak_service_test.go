// services/streak_service_test.go
package services

import (
	"testing"
	"time"

	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreakThreeConsecutiveDays(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "marta", "3A")

	day1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	TouchStreak(user.ID, day1)
	TouchStreak(user.ID, day1.AddDate(0, 0, 1))
	TouchStreak(user.ID, day1.AddDate(0, 0, 2))

	state, err := GetState(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.StreakDays)
	assert.Equal(t, 3, state.MaxStreak)

	// The 3-day milestone pays 50 XP through the streak source, which
	// is never capped.
	var entry models.XPLogEntry
	require.NoError(t, db.Where("user_id = ? AND source = ?", user.ID, models.XPSourceStreak).First(&entry).Error)
	assert.Equal(t, 50, entry.Amount)
}

func TestStreakSameDayIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "elena", "3A")

	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	TouchStreak(user.ID, day)
	TouchStreak(user.ID, day.Add(5*time.Hour))
	TouchStreak(user.ID, day.Add(10*time.Hour))

	state, err := GetState(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.StreakDays)
}

func TestStreakGapResets(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "dario", "3B")

	day1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	TouchStreak(user.ID, day1)
	TouchStreak(user.ID, day1.AddDate(0, 0, 1))
	TouchStreak(user.ID, day1.AddDate(0, 0, 4))

	state, err := GetState(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.StreakDays)
	assert.Equal(t, 2, state.MaxStreak)
}

func TestStreakShieldSurvivesGap(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "chiara", "3B")

	day1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	TouchStreak(user.ID, day1)
	TouchStreak(user.ID, day1.AddDate(0, 0, 1))

	shield := models.PowerUp{Code: "shield", Name: "Streak Shield", Effect: "streak_shield", CostXP: 150, DurationMin: 1440}
	require.NoError(t, db.Create(&shield).Error)
	gap := day1.AddDate(0, 0, 3)
	require.NoError(t, db.Create(&models.UserPowerUp{
		UserID:    user.ID,
		PowerUpID: shield.ID,
		ExpiresAt: gap.Add(time.Hour),
	}).Error)

	TouchStreak(user.ID, gap)

	state, err := GetState(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.StreakDays)

	// Shield is single-use
	var remaining int64
	db.Model(&models.UserPowerUp{}).Where("user_id = ?", user.ID).Count(&remaining)
	assert.Equal(t, int64(0), remaining)
}
