// models/gamification.go
package models

import (
	"time"
)

// XP ledger source tags. Messages and chatbot are daily-capped, the
// rest are not.
const (
	XPSourceMessage   = "message"
	XPSourceChatbot   = "chatbot"
	XPSourceHelp      = "help"
	XPSourceReaction  = "reaction"
	XPSourceChallenge = "challenge"
	XPSourceStreak    = "streak"
	XPSourceBadge     = "badge"
	XPSourceAdmin     = "admin"
)

// XPActionGroupStudy is a challenge action, not a ledger source:
// study-group messages book under the message source but advance the
// study_groups objective.
const XPActionGroupStudy = "group_study"

// GamificationState is the per-user progression row. One row per user,
// created lazily on the first awarded event.
type GamificationState struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	TotalXP    int    `gorm:"default:0" json:"total_xp"`
	SeasonalXP int    `gorm:"default:0" json:"seasonal_xp"`
	WeeklyXP   int    `gorm:"default:0" json:"weekly_xp"`
	DailyXP    int    `gorm:"default:0" json:"daily_xp"`
	Rank       string `gorm:"default:Germoglio" json:"rank"`
	MaxRank    string `gorm:"default:Germoglio" json:"max_rank_reached"`

	StreakDays int        `gorm:"default:0" json:"streak_days"`
	MaxStreak  int        `gorm:"default:0" json:"max_streak"`
	LastAccess *time.Time `json:"last_access,omitempty"`

	MessagesCount int `gorm:"default:0" json:"messages_count"`
	ChatbotCount  int `gorm:"default:0" json:"chatbot_count"`
	HelpCount     int `gorm:"default:0" json:"help_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// XPLogEntry is the append-only ledger. Rows are never updated or
// deleted; corrections are compensating entries with source admin.
type XPLogEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_xplog_user_time;index:idx_xplog_user_source" json:"user_id"`
	Source      string    `gorm:"not null;index:idx_xplog_user_source" json:"source"`
	Amount      int       `json:"amount"`
	BaseAmount  int       `json:"base_amount"`
	Multiplier  float64   `gorm:"default:1" json:"multiplier"`
	Description string    `json:"description"`
	Context     JSONMap   `gorm:"type:text" json:"context,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_xplog_user_time,sort:desc" json:"created_at"`
}

type Badge struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"uniqueIndex;not null" json:"code"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `gorm:"default:common" json:"rarity"`
	XPReward    int    `gorm:"default:0" json:"xp_reward"`

	// Condition is a JSON object like {"type":"total_xp","value":1000}
	// or {"type":"streak_days","value":7}.
	Condition JSONMap `gorm:"type:text" json:"condition"`
}

type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`

	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

type PowerUp struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Code        string  `gorm:"uniqueIndex;not null" json:"code"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	CostXP      int     `gorm:"default:0" json:"cost_xp"`
	Effect      string  `gorm:"not null" json:"effect"`
	Magnitude   float64 `gorm:"default:1" json:"magnitude"`
	DurationMin int     `gorm:"default:60" json:"duration_min"`
}

type UserPowerUp struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PowerUpID uint      `gorm:"not null" json:"power_up_id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	PowerUp PowerUp `gorm:"foreignKey:PowerUpID" json:"power_up,omitempty"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"not null" json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Data      JSONMap   `gorm:"type:text" json:"data,omitempty"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
