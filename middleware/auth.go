package middleware

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"timetracking/config"
	"timetracking/types"
)

// SessionCookie carries the signed login state.
const SessionCookie = "tt_session"

const identityKey = "identity"

// Identity is what a login remembers about the user.
type Identity struct {
	UserID   uuid.UUID
	Username string
	IsAdmin  bool
}

func secret() []byte {
	return []byte(config.AppConfig.SessionSecret)
}

func maxAge() time.Duration {
	if config.AppConfig.SessionMaxAge > 0 {
		return config.AppConfig.SessionMaxAge
	}
	return 12 * time.Hour
}

// IssueSession signs the identity into the session cookie.
func IssueSession(c *fiber.Ctx, id Identity) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  id.UserID.String(),
		"username": id.Username,
		"is_admin": id.IsAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(maxAge()).Unix(),
	})
	signed, err := token.SignedString(secret())
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(maxAge().Seconds()),
		HTTPOnly: true,
		Secure:   config.AppConfig.SessionHTTPSOnly,
		SameSite: sameSite(config.AppConfig.SessionSameSite),
	})
	return nil
}

// ClearSession expires the session cookie.
func ClearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   config.AppConfig.SessionHTTPSOnly,
		SameSite: sameSite(config.AppConfig.SessionSameSite),
	})
}

func sameSite(v string) string {
	switch v {
	case fiber.CookieSameSiteStrictMode, fiber.CookieSameSiteNoneMode:
		return v
	}
	return fiber.CookieSameSiteLaxMode
}

func parseSession(raw string) (*Identity, error) {
	if raw == "" {
		return nil, errors.New("no session")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}
	username, _ := claims["username"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	return &Identity{UserID: userID, Username: username, IsAdmin: isAdmin}, nil
}

// LoadSession puts the identity of a valid cookie into the request locals.
// Invalid or expired cookies are treated as logged out.
func LoadSession(c *fiber.Ctx) error {
	if id, err := parseSession(c.Cookies(SessionCookie)); err == nil {
		c.Locals(identityKey, id)
	}
	return c.Next()
}

// Current returns the logged in identity or nil.
func Current(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(identityKey).(*Identity)
	return id
}

// RequireLogin guards pages: anonymous requests go to the login form.
func RequireLogin(c *fiber.Ctx) error {
	if Current(c) == nil {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPIUser guards the JSON endpoints used by the page scripts.
func RequireAPIUser(c *fiber.Ctx) error {
	if Current(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}
	return c.Next()
}

func RequireAdmin(c *fiber.Ctx) error {
	id := Current(c)
	if id == nil {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if !id.IsAdmin {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireTerminalKey checks X-API-Key against TERMINAL_API_KEY. An unset
// key locks the terminal endpoint entirely.
func RequireTerminalKey(c *fiber.Ctx) error {
	want := config.AppConfig.TerminalAPIKey
	got := c.Get("X-API-Key")
	if want == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"ok":    false,
			"error": "unauthorized",
		})
	}
	return c.Next()
}
