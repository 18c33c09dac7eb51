// services/textcache_service_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator returns a fixed answer and records how many times
// it was invoked.
func countingGenerator(calls *int) Generator {
	return func(ctx context.Context, model, prompt string) (string, int, error) {
		*calls++
		return "La fotosintesi trasforma luce in energia chimica.", 100, nil
	}
}

func TestAskCachesAnswer(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "elena", "3A")

	calls := 0
	SetGenerator(countingGenerator(&calls))
	defer SetGenerator(nil)

	first, err := Ask(context.Background(), &user, "Cos'è la fotosintesi?", nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 100, first.TokensUsed)
	assert.Greater(t, first.CostUSD, 0.0)

	// same question, different casing and spacing
	second, err := Ask(context.Background(), &user, "  cos'è LA fotosintesi?  ", nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Zero(t, second.CostUSD)
	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, 1, calls)

	var entry models.TextCacheEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, 1, entry.HitCount)

	var costRows int64
	db.Model(&models.CostEntry{}).Where("user_id = ?", user.ID).Count(&costRows)
	assert.EqualValues(t, 1, costRows)
}

func TestAskContextChangesCacheKey(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "ivan", "3A")

	calls := 0
	SetGenerator(countingGenerator(&calls))
	defer SetGenerator(nil)

	_, err := Ask(context.Background(), &user, "Spiegami questo", models.JSONMap{"subject": "storia"})
	require.NoError(t, err)
	_, err = Ask(context.Background(), &user, "Spiegami questo", models.JSONMap{"subject": "chimica"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	var entries int64
	db.Model(&models.TextCacheEntry{}).Count(&entries)
	assert.EqualValues(t, 2, entries)
}

func TestAskEnforcesBudget(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "rita", "3A")
	require.NoError(t, db.Create(&models.UserCostLimits{
		UserID:          user.ID,
		DailyLimitUSD:   0.0000001,
		MonthlyLimitUSD: 0.0000001,
	}).Error)

	calls := 0
	SetGenerator(countingGenerator(&calls))
	defer SetGenerator(nil)

	_, err := Ask(context.Background(), &user, "Cos'è un integrale definito?", nil)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Zero(t, calls)

	var costRows int64
	db.Model(&models.CostEntry{}).Where("user_id = ?", user.ID).Count(&costRows)
	assert.Zero(t, costRows)
}

func TestAskGeneratorErrorWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "carlo", "3A")

	SetGenerator(func(ctx context.Context, model, prompt string) (string, int, error) {
		return "", 0, errors.New("upstream unavailable")
	})
	defer SetGenerator(nil)

	_, err := Ask(context.Background(), &user, "Perché il cielo è blu?", nil)
	require.Error(t, err)

	var cacheRows, costRows int64
	db.Model(&models.TextCacheEntry{}).Count(&cacheRows)
	db.Model(&models.CostEntry{}).Count(&costRows)
	assert.Zero(t, cacheRows)
	assert.Zero(t, costRows)
}

func TestAskWithoutGenerator(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "furio", "3A")
	SetGenerator(nil)

	_, err := Ask(context.Background(), &user, "Ciao", nil)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
}

func TestSelectModel(t *testing.T) {
	teacher := &models.User{Role: "teacher"}
	advanced := &models.User{Role: "student", DifficultyPref: "advanced"}
	student := &models.User{Role: "student", DifficultyPref: "standard"}

	long := strings.Repeat("parola ", 60)

	assert.Equal(t, ModelPremium, selectModel(teacher, "Ciao"))
	assert.Equal(t, ModelPremium, selectModel(advanced, "Ciao"))
	assert.Equal(t, ModelPremium, selectModel(student, "Dimostra il teorema di Pitagora"))
	assert.Equal(t, ModelPremium, selectModel(student, long))
	assert.Equal(t, ModelEconomy, selectModel(student, "Quanto fa due più due?"))
}

func TestClassifyComplexity(t *testing.T) {
	assert.Equal(t, "low", classifyComplexity("Quanto fa due più due?"))
	assert.Equal(t, "medium", classifyComplexity(strings.Repeat("parola ", 25)))
	assert.Equal(t, "high", classifyComplexity(strings.Repeat("parola ", 55)))
	assert.Equal(t, "high", classifyComplexity("Calcola la derivata di x al quadrato"))
}
