package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventscape/internal/config"
	"eventscape/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer wires a Server over an in-memory SQLite database with the
// full schema migrated and Redis disabled.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		JWTSecret:             "test-secret-key-for-handlers",
		JWTExpiryHours:        24,
		Env:                   "test",
		AllowedOrigins:        "http://localhost:5173",
		NearbyDefaultRadiusKm: 10,
		NearbyMaxRadiusKm:     500,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return srv, srv.App()
}

type apiResponse struct {
	Status int
	Body   []byte
}

func (r apiResponse) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), "body: %s", r.Body)
}

func (r apiResponse) object(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	r.decode(t, &m)
	return m
}

func (r apiResponse) list(t *testing.T) []map[string]any {
	t.Helper()
	var l []map[string]any
	r.decode(t, &l)
	return l
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{Status: resp.StatusCode, Body: raw}
}

// registerUser signs up name and returns its token and user id.
func registerUser(t *testing.T, app *fiber.App, name string) (string, uint) {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.Status, "body: %s", resp.Body)

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	resp.decode(t, &out)
	require.NotEmpty(t, out.Token)
	return out.Token, out.User.ID
}

func createCategory(t *testing.T, app *fiber.App, token, name string) uint {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/categories", map[string]any{"name": name}, token)
	require.Equal(t, fiber.StatusCreated, resp.Status, "body: %s", resp.Body)
	return uint(resp.object(t)["id"].(float64))
}

func createEvent(t *testing.T, app *fiber.App, token string, fields map[string]any) uint {
	t.Helper()
	body := map[string]any{
		"title":       "Jazz Night",
		"description": "Live jazz",
		"location":    "Blue Note",
		"latitude":    40.7306,
		"longitude":   -74.0007,
		"start_date":  "2030-06-01T19:00:00Z",
		"end_date":    "2030-06-01T23:00:00Z",
	}
	for k, v := range fields {
		body[k] = v
	}
	resp := doRequest(t, app, http.MethodPost, "/api/events", body, token)
	require.Equal(t, fiber.StatusCreated, resp.Status, "body: %s", resp.Body)
	return uint(resp.object(t)["id"].(float64))
}

func eventPath(id uint, suffix string) string {
	return fmt.Sprintf("/api/events/%d%s", id, suffix)
}
