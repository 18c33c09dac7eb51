// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	Bio         string  `json:"bio"`

	// Role is one of: student, teacher, admin.
	Role     string `gorm:"default:student;index" json:"role"`
	School   string `gorm:"index" json:"school"`
	Class    string `gorm:"index" json:"class"`
	Year     int    `json:"year"`
	IsBanned bool   `gorm:"default:false" json:"is_banned"`

	// DifficultyPref is the tutor difficulty: basic, standard, advanced.
	DifficultyPref string `gorm:"default:standard" json:"difficulty_pref"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

func (u *User) IsTeacher() bool {
	return u.Role == "teacher" || u.Role == "admin"
}
