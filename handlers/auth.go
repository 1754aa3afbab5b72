package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"timetracking/middleware"
	"timetracking/payroll"
	"timetracking/types"
	"timetracking/utils"
)

type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

func LoginForm(c *fiber.Ctx) error {
	return c.JSON(types.APIResponse{
		Success: true,
		Data: fiber.Map{
			"fields": []string{"username", "password"},
			"action": "/login",
		},
	})
}

// Login checks the credentials against the directory and opens a session.
// Directory failures look like wrong credentials.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}

	ctx := c.UserContext()
	if !Directory.Authenticate(ctx, req.Username, req.Password) {
		utils.Logger.Info("login failed", zap.String("username", req.Username))
		return c.Status(fiber.StatusUnauthorized).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidLogin,
		})
	}
	isAdmin := Directory.IsAdmin(ctx, req.Username)

	user, err := Store.Users.GetOrCreate(ctx, req.Username)
	if err != nil {
		return serverError(c, "Failed to load user", err)
	}
	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUserInactive,
		})
	}

	err = middleware.IssueSession(c, middleware.Identity{
		UserID:   user.ID,
		Username: req.Username,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		return serverError(c, "Failed to sign session", err)
	}
	utils.Logger.Info("login", zap.String("username", req.Username), zap.Bool("admin", isAdmin))
	return c.Redirect("/", fiber.StatusSeeOther)
}

func Logout(c *fiber.Ctx) error {
	middleware.ClearSession(c)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// Home describes the clock page of the logged in user.
func Home(c *fiber.Ctx) error {
	id := middleware.Current(c)
	if _, err := Store.Users.FindByID(c.UserContext(), id.UserID); err != nil {
		if isNotFound(err) {
			middleware.ClearSession(c)
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return serverError(c, "Failed to load user", err)
	}

	p := payroll.CurrentPeriod(now())
	return c.JSON(types.APIResponse{
		Success: true,
		Data: fiber.Map{
			"username":      id.Username,
			"is_admin":      id.IsAdmin,
			"current_year":  p.Year,
			"current_month": monthString(p),
		},
	})
}
