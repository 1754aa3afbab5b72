package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"timetracking/models"
	"timetracking/payroll"
	"timetracking/services"
	"timetracking/types"
	"timetracking/utils"
)

const localTimeLayout = "2006-01-02T15:04"

func CreateUser(c *fiber.Ctx) error {
	var form services.UserForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}
	if err := validate.Struct(form); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}

	u, err := Users.Create(c.UserContext(), form)
	if err != nil {
		return serverError(c, "Failed to create user", err)
	}
	utils.Logger.Info("user created", zap.String("user", u.LDAPUsername))
	return c.Redirect("/admin/users", fiber.StatusSeeOther)
}

func UpdateUser(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	var form services.UserForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}
	if err := validate.Struct(form); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}

	_, err := Users.Update(c.UserContext(), id, form)
	if isNotFound(err) {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	if err != nil {
		return serverError(c, "Failed to update user", err)
	}
	return c.Redirect("/admin/users/"+id.String(), fiber.StatusSeeOther)
}

func ToggleUser(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	if err := Users.Toggle(c.UserContext(), id); err != nil && !isNotFound(err) {
		return serverError(c, "Failed to toggle user", err)
	}
	return c.Redirect("/admin/users", fiber.StatusSeeOther)
}

type UserDetailResponse struct {
	User          models.User           `json:"user"`
	Managers      []ManagerOption       `json:"managers"`
	Sessions      []SessionResponse     `json:"sessions"`
	Year          int                   `json:"year"`
	Month         string                `json:"month"`
	TotalDuration string                `json:"total_duration"`
	Payroll       payroll.Statement     `json:"payroll"`
	PaycheckForm  services.PaycheckForm `json:"paycheck_form"`
}

// UserDetail shows one user with the sessions and payroll of a month.
func UserDetail(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	p := periodParam(c)

	m, err := Payroll.Month(c.UserContext(), id, p)
	if isNotFound(err) {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	if err != nil {
		return serverError(c, "Failed to load user month", err)
	}
	managers, err := managerOptions(c)
	if err != nil {
		return serverError(c, "Failed to list managers", err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data: UserDetailResponse{
			User:          m.User,
			Managers:      managers,
			Sessions:      toSessionResponses(m.Sessions),
			Year:          p.Year,
			Month:         monthString(p),
			TotalDuration: payroll.FormatDuration(m.TotalSeconds),
			Payroll:       m.Statement,
			PaycheckForm:  m.Form(),
		},
	})
}

type SessionUpdateRequest struct {
	StartTime string `form:"start_time" validate:"required"`
	EndTime   string `form:"end_time"`
	Note      string `form:"note"`
	TZOffset  string `form:"tz_offset"`
}

// parseLocal reads a datetime-local value and shifts it to UTC by the
// browser's offset in minutes.
func parseLocal(value string, tzOffset int) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(localTimeLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t.Add(time.Duration(tzOffset) * time.Minute), true
}

// UpdateSession lets an administrator correct a session. An empty end
// reopens it. Invalid input sends the browser back without changes.
func UpdateSession(c *fiber.Ctx) error {
	back := c.Get(fiber.HeaderReferer, "/admin/users")

	id, ok := idParam(c)
	if !ok {
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	var req SessionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	offset, _ := strconv.Atoi(req.TZOffset)

	start, ok := parseLocal(req.StartTime, offset)
	if !ok {
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	var end *time.Time
	if t, ok := parseLocal(req.EndTime, offset); ok {
		end = &t
	}
	var note *string
	if req.Note != "" {
		note = &req.Note
	}

	err := Store.Sessions.AdminUpdate(c.UserContext(), id, start, end, note)
	if err != nil && !isNotFound(err) {
		return serverError(c, "Failed to update session", err)
	}
	return c.Redirect(back, fiber.StatusSeeOther)
}
