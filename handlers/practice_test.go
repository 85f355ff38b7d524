package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"speakly/database"
	"speakly/middleware"
	"speakly/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-that-is-long-enough!")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.SetDB(db)
	database.RunMigrations()
	InitAchievements()

	app := fiber.New()
	api := app.Group("/api")

	practiceGroup := api.Group("/practice")
	practiceGroup.Use(middleware.AuthMiddleware)
	practiceGroup.Post("/complete", CompleteSession)

	api.Get("/achievements/catalog", GetAchievementCatalog)
	achievementGroup := api.Group("/achievements")
	achievementGroup.Use(middleware.AuthMiddleware)
	achievementGroup.Get("/", GetAchievements)
	achievementGroup.Get("/latest", GetLatestAchievement)

	missionGroup := api.Group("/missions")
	missionGroup.Use(middleware.AuthMiddleware)
	missionGroup.Post("/", CreateMission)

	return app
}

func createTestUser(t *testing.T) (models.User, string) {
	t.Helper()
	user := models.User{Username: "student_" + t.Name()}
	require.NoError(t, database.GetDB().Create(&user).Error)

	token, err := generateToken(user)
	require.NoError(t, err)
	return user, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestCompleteSessionRequiresAuth(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/practice/complete", "", map[string]interface{}{
		"scenario_id": "cafe_ordering",
	})
	assert.Equal(t, 401, resp.StatusCode)
}

func TestCompleteSessionAwardsFirstBadge(t *testing.T) {
	app := setupTestApp(t)
	_, token := createTestUser(t)

	resp, body := doJSON(t, app, "POST", "/api/practice/complete", token, map[string]interface{}{
		"scenario_id":      "cafe_ordering",
		"stars":            4,
		"duration_seconds": 300,
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["sessions"])
	assert.Equal(t, "A1", body["level"])

	badges, ok := body["new_achievements"].([]interface{})
	require.True(t, ok)
	require.Len(t, badges, 1)
	badge := badges[0].(map[string]interface{})
	assert.Equal(t, "first_session", badge["id"])
}

func TestCompleteSessionValidatesInput(t *testing.T) {
	app := setupTestApp(t)
	_, token := createTestUser(t)

	resp, _ := doJSON(t, app, "POST", "/api/practice/complete", token, map[string]interface{}{
		"stars": 4,
	})
	assert.Equal(t, 400, resp.StatusCode, "missing scenario_id")

	resp, _ = doJSON(t, app, "POST", "/api/practice/complete", token, map[string]interface{}{
		"scenario_id": "cafe_ordering",
		"stars":       6,
	})
	assert.Equal(t, 400, resp.StatusCode, "stars out of range")
}

func TestGetAchievementsReport(t *testing.T) {
	app := setupTestApp(t)
	_, token := createTestUser(t)

	doJSON(t, app, "POST", "/api/practice/complete", token, map[string]interface{}{
		"scenario_id": "cafe_ordering",
		"stars":       5,
	})

	resp, body := doJSON(t, app, "GET", "/api/achievements/", token, nil)
	require.Equal(t, 200, resp.StatusCode)

	entries, ok := body["achievements"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, entries)
	assert.GreaterOrEqual(t, body["earned"], float64(1))

	first := entries[0].(map[string]interface{})
	assert.Contains(t, first, "progress_percent")
	assert.Contains(t, first, "target")
}

func TestCreateMissionAwardsAuthorBadge(t *testing.T) {
	app := setupTestApp(t)
	_, token := createTestUser(t)

	resp, body := doJSON(t, app, "POST", "/api/missions/", token, map[string]interface{}{
		"title":        "Ordering at a bakery",
		"target_level": "A2",
	})
	require.Equal(t, 201, resp.StatusCode)

	badges, ok := body["new_achievements"].([]interface{})
	require.True(t, ok)
	require.Len(t, badges, 1)
	badge := badges[0].(map[string]interface{})
	assert.Equal(t, "missions_1", badge["id"])

	// Latest-badge summary picks it up.
	resp, body = doJSON(t, app, "GET", "/api/achievements/latest", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "missions_1", body["latest_id"])
}

func TestCatalogEndpointIsPublic(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doJSON(t, app, "GET", "/api/achievements/catalog", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "catalog")
}
