// models/models.go - Core Models
package models

import (
	"time"
)

// Mission is a speaking lesson: a scenario with a target CEFR level.
// Built-in missions ship with the platform; users author custom ones.
type Mission struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:150"`
	Description string    `json:"description" gorm:"type:text"`
	ScenarioID  string    `json:"scenario_id" gorm:"not null;size:64;index"`
	TargetLevel string    `json:"target_level" gorm:"size:4"`
	IsCustom    bool      `json:"is_custom" gorm:"default:false"`
	CreatedBy   *uint     `json:"created_by" gorm:"index"`
	Creator     *User     `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PracticeSession is one completed practice conversation, with the
// tutor's star assessment (1-5).
type PracticeSession struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SessionUID      string    `json:"session_uid" gorm:"size:64;uniqueIndex"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	User            *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	MissionID       *uint     `json:"mission_id" gorm:"index"`
	ScenarioID      string    `json:"scenario_id" gorm:"not null;size:64;index"`
	Stars           int       `json:"stars" gorm:"default:0"`
	DurationSeconds int       `json:"duration_seconds" gorm:"default:0"`
	IsPerfect       bool      `json:"is_perfect" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScenarioCompletion records that a user has attempted a scenario at
// least once; the unique pair keeps the distinct-scenario count cheap.
type ScenarioCompletion struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_scenario"`
	ScenarioID string    `json:"scenario_id" gorm:"not null;size:64;uniqueIndex:idx_user_scenario"`
	CreatedAt  time.Time `json:"created_at"`
}
