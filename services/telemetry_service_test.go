// services/telemetry_service_test.go
package services

import (
	"testing"
	"time"

	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackCreatesAndReusesSession(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "fabio", "3A")

	first, err := Track(user.ID, TrackInput{EventType: models.EventPageView})
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.False(t, first.Struggle)

	// A second event without a session id lands in the same live
	// session.
	second, err := Track(user.ID, TrackInput{EventType: models.EventMaterialOpen})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	var session models.TelemetrySession
	require.NoError(t, db.Where("session_id = ?", first.SessionID).First(&session).Error)
	assert.Equal(t, 2, session.EventCount)
	assert.Nil(t, session.EndedAt)
}

func TestTrackCategorizesEvents(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "irene", "3A")

	cases := map[string]string{
		models.EventPageView:     models.CategoryEngagement,
		models.EventTaskStart:    models.CategoryLearning,
		models.EventVideoWatch:   models.CategoryLearning,
		models.EventQuizAnswer:   models.CategoryAssessment,
		models.EventChatMessage:  models.CategoryInteraction,
		models.EventPageExit:     models.CategoryEngagement,
		models.EventMaterialOpen: models.CategoryLearning,
	}
	for eventType, want := range cases {
		result, err := Track(user.ID, TrackInput{EventType: eventType})
		require.NoError(t, err)

		var event models.TelemetryEvent
		require.NoError(t, db.First(&event, result.EventID).Error)
		assert.Equal(t, want, event.Category, eventType)
	}
}

func TestTrackFlagsStruggle(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "tomas", "3B")

	result, err := Track(user.ID, TrackInput{
		EventType:       models.EventTaskSubmit,
		DurationSeconds: f(150),
		Accuracy:        f(40),
	})
	require.NoError(t, err)
	assert.True(t, result.Struggle)

	var session models.TelemetrySession
	require.NoError(t, db.Where("session_id = ?", result.SessionID).First(&session).Error)
	assert.Equal(t, 1, session.StruggleCount)
	assert.Equal(t, 1, session.TasksCompleted)
	assert.InDelta(t, 40, session.AvgAccuracy(), 0.001)
}

func TestEndSession(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "rosa", "3B")

	result, err := Track(user.ID, TrackInput{EventType: models.EventPageView})
	require.NoError(t, err)
	require.NoError(t, EndSession(user.ID, result.SessionID))

	var session models.TelemetrySession
	require.NoError(t, db.Where("session_id = ?", result.SessionID).First(&session).Error)
	assert.NotNil(t, session.EndedAt)

	// A new event after closing starts a new session.
	next, err := Track(user.ID, TrackInput{EventType: models.EventPageView})
	require.NoError(t, err)
	assert.NotEqual(t, result.SessionID, next.SessionID)
}

func TestCloseInactiveSessions(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "febe", "4A")

	stale := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, db.Create(&models.TelemetrySession{
		SessionID:  NewSessionID(user.ID),
		UserID:     user.ID,
		StartedAt:  stale,
		LastSeenAt: stale,
	}).Error)

	closed, err := CloseInactiveSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)
}

func TestTrackReopensAfterInactivityGap(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "remo", "3A")

	first, err := Track(user.ID, TrackInput{EventType: models.EventPageView})
	require.NoError(t, err)

	// push the live session past the inactivity window
	stale := time.Now().UTC().Add(-45 * time.Minute)
	require.NoError(t, db.Model(&models.TelemetrySession{}).
		Where("session_id = ?", first.SessionID).
		Update("last_seen_at", stale).Error)

	// still no session id from the client: the stale session must be
	// closed and a fresh one opened
	second, err := Track(user.ID, TrackInput{EventType: models.EventPageView})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	var old models.TelemetrySession
	require.NoError(t, db.Where("session_id = ?", first.SessionID).First(&old).Error)
	assert.NotNil(t, old.EndedAt)
}
