// models/portfolio.go
package models

import (
	"time"
)

// Skill proficiency levels, strongest first.
const (
	ProficiencyExpert       = "expert"
	ProficiencyAdvanced     = "advanced"
	ProficiencyIntermediate = "intermediate"
	ProficiencyBeginner     = "beginner"
)

// Portfolio is the student's self-curated profile used for candidate
// matching.
type Portfolio struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	Headline   string     `json:"headline"`
	Summary    string     `gorm:"type:text" json:"summary"`
	SoftSkills StringList `gorm:"type:text" json:"soft_skills"`
	Languages  StringList `gorm:"type:text" json:"languages"`
	Visible    bool       `json:"visible"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentSkill is a hard skill with a proficiency level.
type StudentSkill struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_user_skill" json:"user_id"`
	Name     string `gorm:"not null;uniqueIndex:idx_user_skill" json:"name"`
	Level    string `gorm:"default:beginner" json:"level"`
	Verified bool   `gorm:"default:false" json:"verified"`

	CreatedAt time.Time `json:"created_at"`
}

type StudentProject struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	URL         string     `json:"url"`
	Tags        StringList `gorm:"type:text" json:"tags,omitempty"`
	Ongoing     bool       `gorm:"default:false" json:"ongoing"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Grade is a subject grade on the Italian 1..10 scale.
type Grade struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	UserID  uint    `gorm:"not null;index" json:"user_id"`
	Subject string  `gorm:"not null" json:"subject"`
	Value   float64 `gorm:"not null" json:"value"`
	Term    string  `json:"term"`

	CreatedAt time.Time `json:"created_at"`
}
