// handlers/users.go
package handlers

import (
	"speakly/database"
	"speakly/middleware"
	"speakly/models"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the caller's profile
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// GetUserStats returns the caller's practice statistics
func GetUserStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var scenarios int64
	if err := db.Model(&models.ScenarioCompletion{}).Where("user_id = ?", userID).Count(&scenarios).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"sessions_completed":  user.SessionsCompleted,
		"current_streak":      user.CurrentStreak,
		"longest_streak":      user.LongestStreak,
		"total_stars":         user.TotalStars,
		"perfect_streak":      user.PerfectStreak,
		"practice_minutes":    user.PracticeSeconds / 60,
		"scenarios_attempted": scenarios,
		"missions_authored":   user.MissionsAuthored,
		"level":               user.Level,
	})
}
