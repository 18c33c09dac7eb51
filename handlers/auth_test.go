// handlers/auth_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"skaila/database"
	"skaila/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var handlerDBSeq int64

func newAuthTestApp(t *testing.T) *fiber.App {
	t.Helper()

	n := atomic.AddInt64(&handlerDBSeq, 1)
	dsn := fmt.Sprintf("file:skaila_handlers_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateAll(db))
	database.SetDB(db)

	app := fiber.New()
	auth := app.Group("/api/auth")
	auth.Post("/login", Login)
	auth.Post("/register", Register)
	app.Get("/api/users/me", middleware.AuthMiddleware, Me)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func getJSON(t *testing.T, app *fiber.App, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func TestRegisterLoginMe(t *testing.T) {
	app := newAuthTestApp(t)

	status, body := postJSON(t, app, "/api/auth/register", map[string]any{
		"username":     "martina",
		"email":        "martina@example.com",
		"password":     "segretissimo",
		"display_name": "Martina B.",
		"school":       "ITIS Galilei",
		"class":        "3A",
		"year":         3,
	}, "")
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	require.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "martina", user["username"])
	// self-registration never grants staff roles
	assert.Equal(t, "student", user["role"])

	status, body = postJSON(t, app, "/api/auth/login", map[string]any{
		"username": "martina",
		"password": "segretissimo",
	}, "")
	require.Equal(t, 200, status)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	status, body = getJSON(t, app, "/api/users/me", token)
	require.Equal(t, 200, status)
	me := body["user"].(map[string]any)
	assert.Equal(t, "martina", me["username"])
	assert.Equal(t, "Martina B.", me["display_name"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app := newAuthTestApp(t)

	status, _ := postJSON(t, app, "/api/auth/register", map[string]any{
		"username": "paolo",
		"password": "password1",
	}, "")
	require.Equal(t, 200, status)

	status, body := postJSON(t, app, "/api/auth/login", map[string]any{
		"username": "paolo",
		"password": "password2",
	}, "")
	assert.Equal(t, 401, status)
	assert.Equal(t, false, body["success"])
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	app := newAuthTestApp(t)

	status, body := postJSON(t, app, "/api/auth/register", map[string]any{
		"username": "breve",
		"password": "abc",
	}, "")
	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "at least 6")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	app := newAuthTestApp(t)

	status, _ := postJSON(t, app, "/api/auth/register", map[string]any{
		"username": "gemello",
		"password": "password1",
	}, "")
	require.Equal(t, 200, status)

	status, body := postJSON(t, app, "/api/auth/register", map[string]any{
		"username": "gemello",
		"password": "password2",
	}, "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Username already taken", body["error"])
}

func TestMeRequiresToken(t *testing.T) {
	app := newAuthTestApp(t)

	status, _ := getJSON(t, app, "/api/users/me", "")
	assert.Equal(t, 401, status)
}
