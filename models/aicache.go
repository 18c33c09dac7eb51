// models/aicache.go
package models

import (
	"time"
)

// TextCacheEntry is a cached tutor answer keyed by the hash of the
// normalized message plus the user-context fingerprint.
type TextCacheEntry struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CacheKey string `gorm:"uniqueIndex;not null" json:"cache_key"`
	Model    string `gorm:"index" json:"model"`
	Message  string `gorm:"type:text" json:"message"`
	Response string `gorm:"type:text" json:"response"`

	HitCount     int       `gorm:"default:0" json:"hit_count"`
	LastAccessed time.Time `gorm:"index" json:"last_accessed"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// CostEntry records every live generation for budget accounting.
// Cache hits do not produce entries.
type CostEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	Model      string    `json:"model"`
	TokensUsed int       `json:"tokens_used"`
	CostUSD    float64   `json:"cost_usd"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// UserCostLimits overrides the default budget ceilings for one user.
type UserCostLimits struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	UserID          uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	DailyLimitUSD   float64 `json:"daily_limit_usd"`
	MonthlyLimitUSD float64 `json:"monthly_limit_usd"`
}

func (TextCacheEntry) TableName() string {
	return "text_cache"
}

func (CostEntry) TableName() string {
	return "cost_tracking"
}

func (UserCostLimits) TableName() string {
	return "user_cost_limits"
}
