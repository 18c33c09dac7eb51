// models/alert.go
package models

import (
	"time"
)

// Alert types.
const (
	AlertTypeStrugglePattern = "struggle_pattern"
	AlertTypeHintDependency  = "hint_dependency"
	AlertTypeRetrySaturation = "retry_saturation"
	AlertTypeEngagementDrop  = "engagement_drop"
)

// Alert severities, lowest to highest.
const (
	AlertSeverityLow      = "low"
	AlertSeverityMedium   = "medium"
	AlertSeverityHigh     = "high"
	AlertSeverityCritical = "critical"
)

// Alert statuses. Transitions: active -> acknowledged -> resolved, or
// active -> resolved. At most one active alert per (user, type).
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert is an early-warning raised for teachers when a student's
// telemetry over the rolling window crosses the struggle threshold.
type Alert struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index:idx_alert_user_type" json:"user_id"`
	School   string `gorm:"index" json:"school"`
	Type     string `gorm:"not null;index:idx_alert_user_type" json:"type"`
	Severity string `gorm:"not null;index" json:"severity"`
	Status   string `gorm:"not null;default:active;index" json:"status"`

	Title              string     `json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	Evidence           JSONMap    `gorm:"type:text" json:"evidence,omitempty"`
	RecommendedActions StringList `gorm:"type:text" json:"recommended_actions,omitempty"`
	RecoveryPathID     *uint      `json:"recovery_path_id,omitempty"`

	AcknowledgedBy   *uint      `json:"acknowledged_by,omitempty"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ResolutionMethod string     `json:"resolution_method,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecoveryPath is a suggested remediation plan attached to an alert.
type RecoveryPath struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AlertID   uint      `gorm:"not null;index" json:"alert_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Subject   string    `json:"subject"`
	Steps     JSONMap   `gorm:"type:text" json:"steps"`
	Status    string    `gorm:"default:suggested" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
