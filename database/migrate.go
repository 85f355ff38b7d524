// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"speakly/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Mission{},
		&models.PracticeSession{},
		&models.ScenarioCompletion{},
		&models.EarnedAchievement{},
		&models.AchievementSummary{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes beyond what the model tags declare
func createIndexes() {
	db := GetDB()

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_level ON users(level)")

	// Mission indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_missions_custom ON missions(is_custom)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_missions_target_level ON missions(target_level)")

	// Practice session indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_user ON practice_sessions(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_created ON practice_sessions(created_at DESC)")

	// Achievement indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_earned_user ON earned_achievements(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_earned_category ON earned_achievements(category)")
}
