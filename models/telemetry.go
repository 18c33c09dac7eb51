// models/telemetry.go
package models

import (
	"time"
)

// Telemetry event types accepted by the ingestor.
const (
	EventPageView     = "page_view"
	EventTaskStart    = "task_start"
	EventTaskSubmit   = "task_submit"
	EventQuizAnswer   = "quiz_answer"
	EventMaterialOpen = "material_open"
	EventVideoWatch   = "video_watch"
	EventChatMessage  = "chat_message"
	EventPageExit     = "page_exit"
)

// Event categories, derived from the type.
const (
	CategoryEngagement  = "engagement"
	CategoryLearning    = "learning"
	CategoryAssessment  = "assessment"
	CategoryInteraction = "interaction"
	CategoryOther       = "other"
)

// TelemetryEvent is append-only. The struggle flag is computed at
// insert time and never revised.
type TelemetryEvent struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index:idx_telemetry_user_time" json:"user_id"`
	School    string `gorm:"index" json:"school"`
	SessionID string `gorm:"not null;index" json:"session_id"`
	EventType string `gorm:"not null;index" json:"event_type"`
	Category  string `gorm:"index" json:"category"`

	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	Accuracy        *float64 `json:"accuracy,omitempty"`
	Context         JSONMap  `gorm:"type:text" json:"context,omitempty"`
	Struggle        bool     `gorm:"default:false;index" json:"struggle"`
	DeviceType      string   `json:"device_type"`

	CreatedAt time.Time `gorm:"index:idx_telemetry_user_time,sort:desc" json:"created_at"`
}

// TelemetrySession groups events between first activity and either an
// explicit end or the inactivity timeout. Aggregates are updated with
// each insert.
type TelemetrySession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SessionID  string     `gorm:"uniqueIndex;not null" json:"session_id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	StartedAt  time.Time  `json:"started_at"`
	LastSeenAt time.Time  `gorm:"index" json:"last_seen_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`

	EventCount      int     `gorm:"default:0" json:"event_count"`
	TasksAttempted  int     `gorm:"default:0" json:"tasks_attempted"`
	TasksCompleted  int     `gorm:"default:0" json:"tasks_completed"`
	AccuracySum     float64 `gorm:"default:0" json:"-"`
	AccuracyCount   int     `gorm:"default:0" json:"-"`
	TimeOnTaskSum   float64 `gorm:"default:0" json:"-"`
	StruggleCount   int     `gorm:"default:0" json:"struggle_count"`
	EngagementScore float64 `gorm:"default:0" json:"engagement_score"`
}

// AvgAccuracy returns the running accuracy average, or zero without
// any scored events.
func (s *TelemetrySession) AvgAccuracy() float64 {
	if s.AccuracyCount == 0 {
		return 0
	}
	return s.AccuracySum / float64(s.AccuracyCount)
}

// AvgTimePerTask returns the average duration of attempted tasks.
func (s *TelemetrySession) AvgTimePerTask() float64 {
	if s.TasksAttempted == 0 {
		return 0
	}
	return s.TimeOnTaskSum / float64(s.TasksAttempted)
}
