// models/achievement.go
package models

import "time"

// EarnedAchievement is one awarded badge. Rows are append-only: created
// exactly once by the award transaction, never updated or deleted. The
// (user_id, achievement_id) unique index makes a double award impossible
// to store even if two writers race past the membership check.
type EarnedAchievement struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	AchievementID string `gorm:"not null;size:64;uniqueIndex:idx_user_badge" json:"achievement_id"`

	// Display fields captured at award time so the UI never needs a
	// catalog join for old badges.
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Category    string `gorm:"not null;index" json:"category"`
	Icon        string `json:"icon"`

	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

// AchievementSummary is the per-user denormalized rollup: how many badges
// and which one came last, for the "latest badge" widget. Created lazily
// on first award. Version is the optimistic write guard; a concurrent
// award that loses the version race rolls back and retries.
type AchievementSummary struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	UserID   uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Count    int        `gorm:"not null;default:0" json:"count"`
	LatestID string     `gorm:"size:64" json:"latest_id,omitempty"`
	LatestAt *time.Time `json:"latest_at,omitempty"`
	Version  int        `gorm:"not null;default:1" json:"-"`

	UpdatedAt time.Time `json:"updated_at"`
}
