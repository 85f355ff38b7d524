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
	IsGuest     bool    `gorm:"default:false" json:"is_guest"`

	// Proficiency. Empty until the tutor's first assessment.
	Level string `gorm:"size:4" json:"level,omitempty"`

	// Practice stats. Owned by the practice recording path; the
	// achievements engine only ever reads them.
	SessionsCompleted int        `gorm:"default:0" json:"sessions_completed"`
	CurrentStreak     int        `gorm:"default:0" json:"current_streak"`
	LongestStreak     int        `gorm:"default:0" json:"longest_streak"`
	TotalStars        int        `gorm:"default:0" json:"total_stars"`
	PerfectStreak     int        `gorm:"default:0" json:"perfect_streak"`
	PracticeSeconds   int        `gorm:"default:0" json:"practice_seconds"`
	MissionsAuthored  int        `gorm:"default:0" json:"missions_authored"`
	LastPracticeAt    *time.Time `json:"last_practice_at,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Sessions []PracticeSession   `gorm:"foreignKey:UserID" json:"sessions,omitempty"`
	Earned   []EarnedAchievement `gorm:"foreignKey:UserID" json:"earned,omitempty"`
}
