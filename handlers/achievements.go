// handlers/achievements.go - Badge progress and catalog endpoints
package handlers

import (
	"speakly/achievements"
	"speakly/database"
	"speakly/middleware"

	"github.com/gofiber/fiber/v2"
)

var achievementSvc *achievements.Service

// InitAchievements initializes the achievements service
func InitAchievements() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitAchievements")
	}
	achievementSvc = achievements.NewService(db)
}

// GetAchievements returns the caller's standing against every badge.
// GET /api/achievements
func GetAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	entries, err := achievementSvc.Report(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	earned := 0
	for _, entry := range entries {
		if entry.Earned {
			earned++
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": entries,
		"total":        len(entries),
		"earned":       earned,
	})
}

// GetAchievementCatalog returns the static catalog grouped for display.
// GET /api/achievements/catalog
func GetAchievementCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"categories": achievements.Categories(),
		"catalog":    achievements.ByCategory(),
	})
}

// GetLatestAchievement returns the lightweight "latest badge" summary.
// GET /api/achievements/latest
func GetLatestAchievement(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	summary, err := achievementSvc.Latest(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievement summary"})
	}
	if summary == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"count":   0,
		})
	}

	resp := fiber.Map{
		"success":   true,
		"count":     summary.Count,
		"latest_id": summary.LatestID,
		"latest_at": summary.LatestAt,
	}
	if def, ok := achievements.ByID(summary.LatestID); ok {
		resp["latest"] = def
	}
	return c.JSON(resp)
}
