// services/telemetry_service.go - Behavioral event ingestion
package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"skaila/config"
	"skaila/database"
	"skaila/logger"
	"skaila/models"

	"gorm.io/gorm"
)

// alertQueue decouples ingestion latency from alert evaluation. When
// the queue is full the evaluation is skipped for that event; the
// telemetry row is still written, so the next event picks it up.
var alertQueue = make(chan uint, 256)

func init() {
	go alertWorker()
}

func alertWorker() {
	for userID := range alertQueue {
		uid := userID
		if err := withRetry(func() error { return EvaluateAlerts(uid) }); err != nil {
			logger.Error("alert evaluation failed", "user_id", uid, "error", err)
		}
	}
}

// NewSessionID builds a session identifier: session_<user>_<epoch>_<4 hex>.
func NewSessionID(userID uint) string {
	buf := make([]byte, 2)
	rand.Read(buf)
	return fmt.Sprintf("session_%d_%d_%s", userID, time.Now().UTC().Unix(), hex.EncodeToString(buf))
}

// categorize maps an event type onto its fixed category.
func categorize(eventType string) string {
	switch eventType {
	case models.EventPageView, models.EventPageExit:
		return models.CategoryEngagement
	case models.EventTaskStart, models.EventMaterialOpen, models.EventVideoWatch:
		return models.CategoryLearning
	case models.EventTaskSubmit, models.EventQuizAnswer:
		return models.CategoryAssessment
	case models.EventChatMessage:
		return models.CategoryInteraction
	}
	return models.CategoryOther
}

// TrackInput is one event as received from a client.
type TrackInput struct {
	EventType       string         `json:"event_type"`
	SessionID       string         `json:"session_id,omitempty"`
	Context         models.JSONMap `json:"context,omitempty"`
	DurationSeconds *float64       `json:"duration_seconds,omitempty"`
	Accuracy        *float64       `json:"accuracy_score,omitempty"`
	DeviceType      string         `json:"device_type,omitempty"`
}

// TrackResult echoes the stored event's identity and struggle verdict.
type TrackResult struct {
	EventID   uint   `json:"event_id"`
	SessionID string `json:"session_id"`
	Struggle  bool   `json:"struggle"`
}

// Track ingests one behavioral event: resolves the live session,
// derives the category, computes the struggle flag, and writes the
// event and the session aggregates in one transaction. Users whose
// event suggests difficulty are queued for alert evaluation.
func Track(userID uint, in TrackInput) (*TrackResult, error) {
	db := database.GetDB()
	now := time.Now().UTC()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	session, err := resolveSession(db, userID, in.SessionID, now)
	if err != nil {
		return nil, err
	}

	struggle := DetectStruggle(in.DurationSeconds, in.Accuracy, in.Context)
	event := models.TelemetryEvent{
		UserID:          userID,
		School:          user.School,
		SessionID:       session.SessionID,
		EventType:       in.EventType,
		Category:        categorize(in.EventType),
		DurationSeconds: in.DurationSeconds,
		Accuracy:        in.Accuracy,
		Context:         in.Context,
		Struggle:        struggle,
		DeviceType:      in.DeviceType,
		CreatedAt:       now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		updateSessionAggregates(session, &event, now)
		return tx.Save(session).Error
	})
	if err != nil {
		return nil, err
	}

	TouchStreak(userID, now)

	if needsAlertSweep(&event) {
		select {
		case alertQueue <- userID:
		default:
			logger.Warn("alert queue saturated, evaluation skipped", "user_id", userID)
		}
	}

	return &TrackResult{EventID: event.ID, SessionID: session.SessionID, Struggle: struggle}, nil
}

// needsAlertSweep decides whether this event should trigger a C9
// evaluation: assessment-relevant types, a struggle flag, or a low
// accuracy score.
func needsAlertSweep(event *models.TelemetryEvent) bool {
	switch event.EventType {
	case models.EventTaskSubmit, models.EventQuizAnswer, models.EventTaskStart:
		return true
	}
	if event.Struggle {
		return true
	}
	return event.Accuracy != nil && *event.Accuracy < 50
}

// resolveSession reuses the given session if it is still live (last
// event within the inactivity window). Without a session id it falls
// back to the user's most recent live session, so clients that never
// echo the id still stay in one session. Opens a new one otherwise.
func resolveSession(db *gorm.DB, userID uint, sessionID string, now time.Time) (*models.TelemetrySession, error) {
	window := time.Duration(config.SessionInactivityMinutes) * time.Minute

	var session models.TelemetrySession
	var err error
	if sessionID != "" {
		err = db.Where("session_id = ? AND user_id = ? AND ended_at IS NULL", sessionID, userID).
			First(&session).Error
	} else {
		err = db.Where("user_id = ? AND ended_at IS NULL", userID).
			Order("last_seen_at DESC").First(&session).Error
	}
	if err == nil && now.Sub(session.LastSeenAt) < window {
		return &session, nil
	}
	if err == nil {
		// stale session, close it at its last activity
		last := session.LastSeenAt
		db.Model(&session).Update("ended_at", last)
	}

	session = models.TelemetrySession{
		SessionID:  NewSessionID(userID),
		UserID:     userID,
		StartedAt:  now,
		LastSeenAt: now,
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// updateSessionAggregates folds one event into the session counters.
// Task and accuracy counters only move on assessment-relevant events.
func updateSessionAggregates(session *models.TelemetrySession, event *models.TelemetryEvent, now time.Time) {
	session.EventCount++
	session.LastSeenAt = now

	if event.EventType == models.EventTaskStart {
		session.TasksAttempted++
		if event.DurationSeconds != nil {
			session.TimeOnTaskSum += *event.DurationSeconds
		}
	}
	if event.Category == models.CategoryAssessment {
		session.TasksCompleted++
		if event.DurationSeconds != nil {
			session.TimeOnTaskSum += *event.DurationSeconds
		}
		if event.Accuracy != nil {
			session.AccuracySum += *event.Accuracy
			session.AccuracyCount++
		}
	}
	if event.Struggle {
		session.StruggleCount++
	}
	session.EngagementScore = engagementScore(session)
}

// engagementScore is a 0..100 heuristic: activity volume plus accuracy
// minus struggling.
func engagementScore(s *models.TelemetrySession) float64 {
	score := float64(s.EventCount) * 2
	if score > 50 {
		score = 50
	}
	score += s.AvgAccuracy() / 2
	score -= float64(s.StruggleCount) * 5
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// EndSession closes a session explicitly. Unknown ids are a no-op.
func EndSession(userID uint, sessionID string) error {
	now := time.Now().UTC()
	return database.GetDB().Model(&models.TelemetrySession{}).
		Where("session_id = ? AND user_id = ? AND ended_at IS NULL", sessionID, userID).
		Update("ended_at", now).Error
}

// CloseInactiveSessions ends sessions idle past the inactivity window.
// Returns the number closed.
func CloseInactiveSessions() (int64, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(config.SessionInactivityMinutes) * time.Minute)
	res := database.GetDB().Model(&models.TelemetrySession{}).
		Where("ended_at IS NULL AND last_seen_at < ?", cutoff).
		Update("ended_at", gorm.Expr("last_seen_at"))
	return res.RowsAffected, res.Error
}

// SessionSummary aggregates a session for the history endpoint.
type SessionSummary struct {
	SessionID       string     `json:"session_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	EventCount      int        `json:"event_count"`
	TasksAttempted  int        `json:"tasks_attempted"`
	TasksCompleted  int        `json:"tasks_completed"`
	AvgAccuracy     float64    `json:"avg_accuracy"`
	AvgTimePerTask  float64    `json:"avg_time_per_task"`
	StruggleCount   int        `json:"struggle_count"`
	EngagementScore float64    `json:"engagement_score"`
	DurationSeconds int        `json:"duration_seconds"`
}

// RecentSessions lists a user's latest sessions, newest first.
func RecentSessions(userID uint, limit int) ([]SessionSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var sessions []models.TelemetrySession
	if err := database.GetDB().Where("user_id = ?", userID).
		Order("started_at DESC").Limit(limit).Find(&sessions).Error; err != nil {
		return nil, err
	}

	out := make([]SessionSummary, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		end := s.LastSeenAt
		if s.EndedAt != nil {
			end = *s.EndedAt
		}
		out[i] = SessionSummary{
			SessionID:       s.SessionID,
			StartedAt:       s.StartedAt,
			EndedAt:         s.EndedAt,
			EventCount:      s.EventCount,
			TasksAttempted:  s.TasksAttempted,
			TasksCompleted:  s.TasksCompleted,
			AvgAccuracy:     s.AvgAccuracy(),
			AvgTimePerTask:  s.AvgTimePerTask(),
			StruggleCount:   s.StruggleCount,
			EngagementScore: s.EngagementScore,
			DurationSeconds: int(end.Sub(s.StartedAt).Seconds()),
		}
	}
	return out, nil
}
