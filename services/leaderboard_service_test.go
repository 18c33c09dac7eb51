// services/leaderboard_service_test.go
package services

import (
	"testing"

	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedState(t *testing.T, db *gorm.DB, userID uint, total, weekly int) {
	t.Helper()
	require.NoError(t, db.Create(&models.GamificationState{
		UserID:   userID,
		TotalXP:  total,
		WeeklyXP: weekly,
		Rank:     RankForXP(total).Name,
		MaxRank:  RankForXP(total).Name,
	}).Error)
}

func TestLeaderboardAllTime(t *testing.T) {
	db := setupTestDB(t)
	alice := createStudent(t, db, "alice", "3A")
	bruno := createStudent(t, db, "bruno", "3A")
	carla := createStudent(t, db, "carla", "3B")
	seedState(t, db, alice.ID, 1200, 40)
	seedState(t, db, bruno.ID, 300, 90)
	seedState(t, db, carla.ID, 2500, 10)

	rows, err := GetLeaderboard("alltime", "", 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, carla.ID, rows[0].UserID)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2500, rows[0].XP)
	assert.Equal(t, "Guardiano", rows[0].Rank)
	assert.Equal(t, alice.ID, rows[1].UserID)
	assert.Equal(t, bruno.ID, rows[2].UserID)
}

func TestLeaderboardWeeklyUsesWeeklyXP(t *testing.T) {
	db := setupTestDB(t)
	alice := createStudent(t, db, "alice", "3A")
	bruno := createStudent(t, db, "bruno", "3A")
	seedState(t, db, alice.ID, 1200, 40)
	seedState(t, db, bruno.ID, 300, 90)

	rows, err := GetLeaderboard("weekly", "", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, bruno.ID, rows[0].UserID)
	assert.Equal(t, 90, rows[0].XP)
	// rank still reflects lifetime XP
	assert.Equal(t, "Cadetto", rows[0].Rank)
}

func TestLeaderboardClassFilter(t *testing.T) {
	db := setupTestDB(t)
	alice := createStudent(t, db, "alice", "3A")
	carla := createStudent(t, db, "carla", "3B")
	seedState(t, db, alice.ID, 100, 10)
	seedState(t, db, carla.ID, 900, 50)

	rows, err := GetLeaderboard("alltime", "3A", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, alice.ID, rows[0].UserID)
}

func TestLeaderboardExcludesBanned(t *testing.T) {
	db := setupTestDB(t)
	alice := createStudent(t, db, "alice", "3A")
	bruno := createStudent(t, db, "bruno", "3A")
	seedState(t, db, alice.ID, 100, 10)
	seedState(t, db, bruno.ID, 5000, 200)
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", bruno.ID).Update("is_banned", true).Error)

	rows, err := GetLeaderboard("alltime", "", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, alice.ID, rows[0].UserID)
}

func TestUserPosition(t *testing.T) {
	db := setupTestDB(t)
	alice := createStudent(t, db, "alice", "3A")
	bruno := createStudent(t, db, "bruno", "3A")
	carla := createStudent(t, db, "carla", "3B")
	seedState(t, db, alice.ID, 1200, 40)
	seedState(t, db, bruno.ID, 300, 90)
	seedState(t, db, carla.ID, 2500, 10)

	assert.Equal(t, 2, UserPosition(alice.ID, "alltime"))
	assert.Equal(t, 1, UserPosition(bruno.ID, "weekly"))
	assert.Zero(t, UserPosition(9999, "alltime"))
}
