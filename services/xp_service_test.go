// services/xp_service_test.go
package services

import (
	"testing"
	"time"

	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardRespectsDailyCap(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "marco", "3A")

	// 495 message XP already granted today
	require.NoError(t, db.Create(&models.XPLogEntry{
		UserID:     user.ID,
		Source:     models.XPSourceMessage,
		Amount:     495,
		BaseAmount: 495,
		Multiplier: 1,
		CreatedAt:  time.Now().UTC(),
	}).Error)

	result, err := Award(user.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, 5, result.GrantedAmount)

	// Cap is now exactly reached, the next award must be rejected
	// without any writes.
	var entriesBefore int64
	db.Model(&models.XPLogEntry{}).Where("user_id = ?", user.ID).Count(&entriesBefore)

	result, err = Award(user.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "cap", result.Reason)

	var entriesAfter int64
	db.Model(&models.XPLogEntry{}).Where("user_id = ?", user.ID).Count(&entriesAfter)
	assert.Equal(t, entriesBefore, entriesAfter)

	state, err := GetState(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, state.TotalXP)
}

func TestAwardUncappedSourcesBypassCap(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "giulia", "3A")

	require.NoError(t, db.Create(&models.XPLogEntry{
		UserID:     user.ID,
		Source:     models.XPSourceMessage,
		Amount:     500,
		BaseAmount: 500,
		Multiplier: 1,
		CreatedAt:  time.Now().UTC(),
	}).Error)

	// Streak and challenge XP must still flow when the message cap is
	// exhausted.
	result, err := AwardStreakBonus(user.ID, 50, nil)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, 50, result.GrantedAmount)

	result, err = AwardChallengeReward(user.ID, 100, nil)
	require.NoError(t, err)
	assert.True(t, result.Granted)
}

func TestAwardRankUp(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "luca", "3B")

	state, err := GetState(user.ID)
	require.NoError(t, err)
	state.TotalXP = 999
	state.Rank = "Germoglio"
	require.NoError(t, db.Save(state).Error)

	result, err := Award(user.ID, 50, models.XPSourceStreak, "bonus", nil, false, false)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, 1049, result.NewTotalXP)
	assert.True(t, result.RankUp)
	assert.Equal(t, "Cavaliere", result.NewRank)

	var notif models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, "rank_up").First(&notif).Error)
	assert.Equal(t, "Cavaliere", notif.Data["rank"])
}

func TestRankNeverDowngrades(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "anna", "3B")

	state, err := GetState(user.ID)
	require.NoError(t, err)
	state.TotalXP = 1200
	state.Rank = "Cavaliere"
	state.MaxRank = "Cavaliere"
	require.NoError(t, db.Save(state).Error)

	result, err := Award(user.ID, 10, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)
	assert.False(t, result.RankUp)
	assert.Equal(t, "Cavaliere", result.Rank)

	state, _ = GetState(user.ID)
	assert.Equal(t, "Cavaliere", state.MaxRank)
}

func TestComputeMultiplier(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "sara", "4A")

	offPeak := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	prime := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	assert.InDelta(t, 1.0, computeMultiplier(db, user.ID, offPeak), 0.001)
	assert.InDelta(t, 1.2, computeMultiplier(db, user.ID, prime), 0.001)

	// Active xp_boost doubles, prime time still adds on top.
	boost := models.PowerUp{Code: "double_xp", Name: "Double XP", Effect: "xp_boost", Magnitude: 2.0, CostXP: 100, DurationMin: 60}
	require.NoError(t, db.Create(&boost).Error)
	require.NoError(t, db.Create(&models.UserPowerUp{
		UserID:    user.ID,
		PowerUpID: boost.ID,
		ExpiresAt: prime.Add(time.Hour),
	}).Error)

	assert.InDelta(t, 2.0, computeMultiplier(db, user.ID, offPeak), 0.001)
	assert.InDelta(t, 2.2, computeMultiplier(db, user.ID, prime), 0.001)
}

func TestAwardAppliesMultiplierWithFloor(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "paolo", "4A")

	boost := models.PowerUp{Code: "boost_15", Name: "Boost", Effect: "xp_boost", Magnitude: 1.5, CostXP: 50, DurationMin: 60}
	require.NoError(t, db.Create(&boost).Error)
	require.NoError(t, db.Create(&models.UserPowerUp{
		UserID:    user.ID,
		PowerUpID: boost.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}).Error)

	result, err := Award(user.ID, 5, models.XPSourceHelp, "help", nil, false, true)
	require.NoError(t, err)
	require.True(t, result.Granted)

	// 5 * 1.5 = 7.5, optionally * prime time, always floor-truncated.
	now := time.Now().UTC()
	expected := 7
	if now.Hour() >= 14 && now.Hour() < 19 {
		expected = 8 // 5 * 1.7
	}
	assert.Equal(t, expected, result.GrantedAmount)

	var entry models.XPLogEntry
	require.NoError(t, db.Where("user_id = ? AND source = ?", user.ID, models.XPSourceHelp).First(&entry).Error)
	assert.Equal(t, 5, entry.BaseAmount)
	assert.Equal(t, expected, entry.Amount)
}

func TestAdminAdjustAllowsNegative(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "nico", "5A")

	_, err := Award(user.ID, 100, models.XPSourceHelp, "help", nil, false, false)
	require.NoError(t, err)

	result, err := AdminAdjust(user.ID, -40, "correction", nil)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, 60, result.NewTotalXP)

	var entry models.XPLogEntry
	require.NoError(t, db.Where("user_id = ? AND source = ?", user.ID, models.XPSourceAdmin).First(&entry).Error)
	assert.Equal(t, -40, entry.Amount)
}

func TestResetDailyAndWeekly(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "vale", "5A")

	_, err := Award(user.ID, 30, models.XPSourceHelp, "help", nil, false, false)
	require.NoError(t, err)

	require.NoError(t, ResetDailyXP())
	state, _ := GetState(user.ID)
	assert.Equal(t, 0, state.DailyXP)
	assert.Equal(t, 30, state.WeeklyXP)
	assert.Equal(t, 30, state.TotalXP)

	require.NoError(t, ResetWeeklyXP())
	state, _ = GetState(user.ID)
	assert.Equal(t, 0, state.WeeklyXP)
	assert.Equal(t, 30, state.TotalXP)
	_ = db
}
