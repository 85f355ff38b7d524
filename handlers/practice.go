// handlers/practice.go - Practice session recording, the main badge trigger source
package handlers

import (
	"errors"
	"log"
	"time"

	"speakly/achievements"
	"speakly/database"
	"speakly/middleware"
	"speakly/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompleteSessionRequest struct {
	MissionID       *uint  `json:"mission_id"`
	ScenarioID      string `json:"scenario_id"`
	Stars           int    `json:"stars"`
	DurationSeconds int    `json:"duration_seconds"`
	IsPerfect       bool   `json:"is_perfect"`
}

// starsPerLevel maps accumulated stars to a CEFR tier. The tutor's
// per-session assessment drives stars; levels only ever move up.
var starsPerLevel = []struct {
	level string
	stars int
}{
	{"C2", 3000},
	{"C1", 1500},
	{"B2", 700},
	{"B1", 300},
	{"A2", 100},
	{"A1", 0},
}

func levelForStars(stars int) string {
	for _, entry := range starsPerLevel {
		if stars >= entry.stars {
			return entry.level
		}
	}
	return "A1"
}

// CompleteSession persists a finished practice session, rolls the user's
// stats forward, and then asks the achievements engine what that unlocked.
func CompleteSession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CompleteSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ScenarioID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "scenario_id is required"})
	}
	if req.Stars < 0 || req.Stars > 5 {
		return c.Status(400).JSON(fiber.Map{"error": "stars must be between 0 and 5"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	now := time.Now().UTC()
	oldLevel := user.Level

	err = db.Transaction(func(tx *gorm.DB) error {
		user.SessionsCompleted++
		user.TotalStars += req.Stars
		user.PracticeSeconds += req.DurationSeconds
		updateStreak(&user, now)

		if req.IsPerfect {
			user.PerfectStreak++
		} else {
			user.PerfectStreak = 0
		}

		user.Level = levelForStars(user.TotalStars)

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		session := models.PracticeSession{
			SessionUID:      uuid.New().String(),
			UserID:          userID,
			MissionID:       req.MissionID,
			ScenarioID:      req.ScenarioID,
			Stars:           req.Stars,
			DurationSeconds: req.DurationSeconds,
			IsPerfect:       req.IsPerfect,
			CreatedAt:       now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		completion := models.ScenarioCompletion{UserID: userID, ScenarioID: req.ScenarioID}
		return tx.Where(&completion).FirstOrCreate(&completion).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record session"})
	}

	newBadges := runAwards(userID, achievements.TriggerSessionCompleted)
	if user.Level != oldLevel {
		newBadges = append(newBadges, runAwards(userID, achievements.TriggerLevelChanged)...)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"total_stars":      user.TotalStars,
		"sessions":         user.SessionsCompleted,
		"current_streak":   user.CurrentStreak,
		"longest_streak":   user.LongestStreak,
		"level":            user.Level,
		"leveled_up":       user.Level != oldLevel,
		"new_achievements": newBadges,
	})
}

// updateStreak advances the daily streak by calendar day (UTC): same day
// keeps it, the next day extends it, anything longer resets to 1.
func updateStreak(user *models.User, now time.Time) {
	today := now.Truncate(24 * time.Hour)
	if user.LastPracticeAt != nil {
		last := user.LastPracticeAt.UTC().Truncate(24 * time.Hour)
		switch today.Sub(last) {
		case 0:
			// Already practiced today
		case 24 * time.Hour:
			user.CurrentStreak++
		default:
			user.CurrentStreak = 1
		}
	} else {
		user.CurrentStreak = 1
	}

	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}

	t := now
	user.LastPracticeAt = &t
}

// runAwards fires the achievements engine for a trigger. Award failures
// never fail the request that caused them; the stats are already saved
// and the badges stay claimable on the next trigger or report.
func runAwards(userID uint, trigger achievements.Trigger) []achievements.Definition {
	result, err := achievementSvc.Award(userID, trigger)
	if err != nil {
		if errors.Is(err, achievements.ErrConflict) {
			log.Printf("achievements: award for user %d contended, will retry on next trigger: %v", userID, err)
		} else {
			log.Printf("achievements: award for user %d failed: %v", userID, err)
		}
		return []achievements.Definition{}
	}
	return result.NewlyEarned
}
