package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracking/config"
)

func setupConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{
		SessionSecret:   "test-secret",
		SessionMaxAge:   time.Hour,
		SessionSameSite: "strict",
		TerminalAPIKey:  "terminal-key",
	}
	t.Cleanup(func() { config.AppConfig = prev })
}

func setupApp(id Identity) *fiber.App {
	app := fiber.New()
	app.Use(LoadSession)
	app.Post("/issue", func(c *fiber.Ctx) error {
		return IssueSession(c, id)
	})
	app.Post("/clear", func(c *fiber.Ctx) error {
		ClearSession(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/page", RequireLogin, func(c *fiber.Ctx) error {
		return c.SendString(Current(c).Username)
	})
	app.Get("/api", RequireAPIUser, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendString("admin")
	})
	app.Post("/terminal", RequireTerminalKey, func(c *fiber.Ctx) error {
		return c.SendString("scan")
	})
	return app
}

func login(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/issue", nil))
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSessionRoundTrip(t *testing.T) {
	setupConfig(t)
	app := setupApp(Identity{UserID: uuid.New(), Username: "amuster"})

	cookie := login(t, app)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	resp := get(t, app, "/page", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "amuster", string(body))

	resp = get(t, app, "/api", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAnonymousRequests(t *testing.T) {
	setupConfig(t)
	app := setupApp(Identity{})

	resp := get(t, app, "/page", nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = get(t, app, "/api", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = get(t, app, "/admin", nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestRequireAdmin(t *testing.T) {
	setupConfig(t)

	user := setupApp(Identity{UserID: uuid.New(), Username: "amuster"})
	resp := get(t, user, "/admin", login(t, user))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	admin := setupApp(Identity{UserID: uuid.New(), Username: "chef", IsAdmin: true})
	resp = get(t, admin, "/admin", login(t, admin))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestForgedAndExpiredCookiesAreIgnored(t *testing.T) {
	setupConfig(t)
	app := setupApp(Identity{})

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(), "username": "mallory", "is_admin": true,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	resp := get(t, app, "/api", &http.Cookie{Name: SessionCookie, Value: forged})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(), "username": "amuster",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	resp = get(t, app, "/api", &http.Cookie{Name: SessionCookie, Value: expired})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestClearSession(t *testing.T) {
	setupConfig(t)
	app := setupApp(Identity{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/clear", nil))
	require.NoError(t, err)
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			found = true
			assert.Empty(t, c.Value)
		}
	}
	assert.True(t, found)
}

func TestRequireTerminalKey(t *testing.T) {
	setupConfig(t)
	app := setupApp(Identity{})

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/terminal", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send("terminal-key"))
	assert.Equal(t, fiber.StatusUnauthorized, send("wrong"))
	assert.Equal(t, fiber.StatusUnauthorized, send(""))

	config.AppConfig.TerminalAPIKey = ""
	assert.Equal(t, fiber.StatusUnauthorized, send(""))
}
