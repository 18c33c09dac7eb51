// models/challenge.go - Challenge System Data Models
package models

import (
	"time"
)

// Challenge kinds.
type ChallengeKind string

const (
	ChallengeKindDaily  ChallengeKind = "daily"
	ChallengeKindWeekly ChallengeKind = "weekly"
	ChallengeKindClass  ChallengeKind = "class"
)

// Challenge difficulties.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Challenge is an immutable definition, instantiated per user (or per
// class) as progress rows.
type Challenge struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null;size:100"`
	Description string        `json:"description" gorm:"type:text"`
	Kind        ChallengeKind `json:"kind" gorm:"not null;default:'daily';index"`
	Difficulty  string        `json:"difficulty" gorm:"default:'easy';index"`
	// Targets maps objective key to required count, e.g.
	// {"messages": 10, "chatbot_interactions": 3}.
	Targets  IntMap `json:"targets" gorm:"type:text"`
	RewardXP int    `json:"reward_xp" gorm:"not null;default:0"`
	BadgeID  *uint  `json:"badge_id,omitempty"`

	YearMin int        `json:"year_min" gorm:"default:1"`
	YearMax int        `json:"year_max" gorm:"default:5"`
	Active  bool       `json:"active" gorm:"index"`
	EndsAt  *time.Time `json:"ends_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserChallenge is one user's assignment of a challenge. SlotKey
// enforces assignment uniqueness at the database: "daily:2026-01-15"
// allows one daily per day, "weekly:2026-W03:easy" one weekly per
// difficulty per week.
type UserChallenge struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_challenge_slot;index"`
	ChallengeID uint       `json:"challenge_id" gorm:"not null;index"`
	Challenge   *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
	SlotKey     string     `json:"slot_key" gorm:"not null;uniqueIndex:idx_user_challenge_slot"`

	// Progress mirrors the template's target keys with current counts.
	Progress    IntMap     `json:"progress" gorm:"type:text"`
	Completed   bool       `json:"completed" gorm:"default:false;index"`
	AssignedAt  time.Time  `json:"assigned_at"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"index"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ClassChallenge is a cooperative assignment keyed on (class,
// challenge). Contributors maps user id (as string) to contribution
// count for the top-contributors board.
type ClassChallenge struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Class       string     `json:"class" gorm:"not null;uniqueIndex:idx_class_challenge"`
	ChallengeID uint       `json:"challenge_id" gorm:"not null;uniqueIndex:idx_class_challenge"`
	Challenge   *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
	School      string     `json:"school" gorm:"index"`

	Progress     IntMap     `json:"progress" gorm:"type:text"`
	Contributors IntMap     `json:"contributors" gorm:"type:text"`
	Completed    bool       `json:"completed" gorm:"default:false"`
	AssignedAt   time.Time  `json:"assigned_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (UserChallenge) TableName() string {
	return "user_challenges"
}

func (ClassChallenge) TableName() string {
	return "class_challenges"
}
