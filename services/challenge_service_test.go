// services/challenge_service_test.go
package services

import (
	"testing"

	"skaila/database"
	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createChallenge(t *testing.T, kind models.ChallengeKind, difficulty string, targets models.IntMap, reward int) models.Challenge {
	t.Helper()
	challenge := models.Challenge{
		Name:        string(kind) + "_" + difficulty + "_tpl",
		Description: "test template",
		Kind:        kind,
		Difficulty:  difficulty,
		Targets:     targets,
		RewardXP:    reward,
		Active:      true,
	}
	require.NoError(t, database.GetDB().Create(&challenge).Error)
	return challenge
}

func TestAssignDailyIsIdempotentPerDay(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "pietro", "3A")
	createChallenge(t, models.ChallengeKindDaily, models.DifficultyEasy, models.IntMap{"messages": 3}, 100)

	assigned, first, err := AssignDaily(user.ID)
	require.NoError(t, err)
	assert.True(t, assigned)
	require.NotNil(t, first)

	assigned, second, err := AssignDaily(user.ID)
	require.NoError(t, err)
	assert.False(t, assigned)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.SlotKey, second.SlotKey)
}

func TestAssignWeeklyFillsThreeDifficulties(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "carla", "3A")
	createChallenge(t, models.ChallengeKindWeekly, models.DifficultyEasy, models.IntMap{"messages": 10}, 150)
	createChallenge(t, models.ChallengeKindWeekly, models.DifficultyMedium, models.IntMap{"chatbot_interactions": 15}, 300)
	createChallenge(t, models.ChallengeKindWeekly, models.DifficultyHard, models.IntMap{"peers_helped": 5, "xp_accumulated": 500}, 600)

	instances, err := AssignWeekly(user.ID)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	difficulties := map[string]bool{}
	for _, uc := range instances {
		require.NotNil(t, uc.Challenge)
		difficulties[uc.Challenge.Difficulty] = true
	}
	assert.Len(t, difficulties, 3)

	// Re-running keeps the same slots.
	again, err := AssignWeekly(user.ID)
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestProgressCompletesChallengeOnce(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "bruno", "3B")
	createChallenge(t, models.ChallengeKindDaily, models.DifficultyEasy, models.IntMap{"messages": 2}, 100)

	_, _, err := AssignDaily(user.ID)
	require.NoError(t, err)

	// Two message awards meet the target; the reward is a challenge
	// source ledger entry that does not feed back into progress.
	_, err = Award(user.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)
	_, err = Award(user.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)

	var uc models.UserChallenge
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&uc).Error)
	assert.True(t, uc.Completed)
	assert.NotNil(t, uc.CompletedAt)
	assert.Equal(t, 2, uc.Progress["messages"])

	var rewards int64
	db.Model(&models.XPLogEntry{}).
		Where("user_id = ? AND source = ?", user.ID, models.XPSourceChallenge).
		Count(&rewards)
	assert.Equal(t, int64(1), rewards)

	// Further messages leave the completed instance untouched.
	_, err = Award(user.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)
	db.Model(&models.XPLogEntry{}).
		Where("user_id = ? AND source = ?", user.ID, models.XPSourceChallenge).
		Count(&rewards)
	assert.Equal(t, int64(1), rewards)
}

func TestProgressClampsAtTarget(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "aldo", "3B")
	createChallenge(t, models.ChallengeKindDaily, models.DifficultyEasy, models.IntMap{"xp_accumulated": 20}, 50)

	_, _, err := AssignDaily(user.ID)
	require.NoError(t, err)

	_, err = Award(user.ID, 100, models.XPSourceHelp, "help", nil, false, false)
	require.NoError(t, err)

	var uc models.UserChallenge
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&uc).Error)
	assert.Equal(t, 20, uc.Progress["xp_accumulated"])
	assert.True(t, uc.Completed)
}

func TestClassChallengeContributors(t *testing.T) {
	db := setupTestDB(t)
	alice := createStudent(t, db, "alice", "3C")
	bob := createStudent(t, db, "bob", "3C")
	tpl := createChallenge(t, models.ChallengeKindClass, models.DifficultyMedium, models.IntMap{"messages": 3}, 200)

	cc, err := AssignClass("3C", "ITIS Galilei", tpl.ID)
	require.NoError(t, err)
	require.NotNil(t, cc)

	_, err = Award(alice.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)
	_, err = Award(alice.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)
	_, err = Award(bob.ID, 5, models.XPSourceMessage, "msg", nil, true, false)
	require.NoError(t, err)

	var saved models.ClassChallenge
	require.NoError(t, db.Where("class = ?", "3C").First(&saved).Error)
	assert.True(t, saved.Completed)
	assert.Equal(t, 3, saved.Progress["messages"])

	top := TopContributors(&saved, 5)
	require.Len(t, top, 2)
	assert.Equal(t, alice.ID, top[0].UserID)
	assert.Equal(t, 2, top[0].XP)

	// Every class member gets the reward.
	for _, u := range []models.User{alice, bob} {
		var count int64
		db.Model(&models.XPLogEntry{}).
			Where("user_id = ? AND source = ?", u.ID, models.XPSourceChallenge).
			Count(&count)
		assert.Equal(t, int64(1), count, u.Username)
	}
}

func TestProgressGroupStudyObjective(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "sandro", "3A")
	tpl := createChallenge(t, models.ChallengeKindDaily, models.DifficultyEasy, models.IntMap{"study_groups": 2}, 80)

	assigned, instance, err := AssignDaily(user.ID)
	require.NoError(t, err)
	require.True(t, assigned)
	require.Equal(t, tpl.ID, instance.ChallengeID)

	// a plain message is not a study-group action
	_, err = AwardMessage(user.ID, false, nil)
	require.NoError(t, err)
	var uc models.UserChallenge
	require.NoError(t, db.First(&uc, instance.ID).Error)
	assert.Equal(t, 0, uc.Progress["study_groups"])

	_, err = AwardMessage(user.ID, true, nil)
	require.NoError(t, err)
	_, err = AwardMessage(user.ID, true, nil)
	require.NoError(t, err)

	require.NoError(t, db.First(&uc, instance.ID).Error)
	assert.Equal(t, 2, uc.Progress["study_groups"])
	assert.True(t, uc.Completed)
}

func TestInactiveTemplateIsNeverAssigned(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "tina", "3A")

	retired := models.Challenge{
		Name:       "retired_tpl",
		Kind:       models.ChallengeKindDaily,
		Difficulty: models.DifficultyEasy,
		Targets:    models.IntMap{"messages": 3},
		RewardXP:   50,
		Active:     false,
	}
	require.NoError(t, db.Create(&retired).Error)

	// the inactive flag must survive the insert
	var stored models.Challenge
	require.NoError(t, db.First(&stored, retired.ID).Error)
	require.False(t, stored.Active)

	assigned, instance, err := AssignDaily(user.ID)
	require.NoError(t, err)
	assert.False(t, assigned)
	assert.Nil(t, instance)
}
