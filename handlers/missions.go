// handlers/missions.go - Custom lesson authoring
package handlers

import (
	"speakly/achievements"
	"speakly/database"
	"speakly/middleware"
	"speakly/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateMissionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetLevel string `json:"target_level"`
}

// CreateMission saves a user-authored lesson and fires the authoring trigger.
func CreateMission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}

	db := database.GetDB()

	mission := models.Mission{
		Title:       req.Title,
		Description: req.Description,
		ScenarioID:  "custom_" + uuid.New().String()[:8],
		TargetLevel: req.TargetLevel,
		IsCustom:    true,
		CreatedBy:   &userID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&mission).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("missions_authored", gorm.Expr("missions_authored + 1")).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create mission"})
	}

	newBadges := runAwards(userID, achievements.TriggerLessonCreated)

	return c.Status(201).JSON(fiber.Map{
		"success":          true,
		"mission":          mission,
		"new_achievements": newBadges,
	})
}

// GetMissions lists missions, optionally filtered to the caller's own.
func GetMissions(c *fiber.Ctx) error {
	db := database.GetDB()

	query := db.Model(&models.Mission{})
	if level := c.Query("level"); level != "" {
		query = query.Where("target_level = ?", level)
	}
	if c.Query("mine") == "true" {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		query = query.Where("created_by = ?", userID)
	}

	var missions []models.Mission
	if err := query.Order("created_at DESC").Find(&missions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch missions"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"missions": missions,
		"total":    len(missions),
	})
}
