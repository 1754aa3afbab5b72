package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"timetracking/directory"
	"timetracking/metrics"
	"timetracking/payroll"
	"timetracking/repositories"
	"timetracking/services"
	"timetracking/types"
	"timetracking/utils"
)

var (
	Store     *repositories.Store
	Directory directory.Directory
	Clock     *services.ClockService
	Payroll   *services.PayrollService
	Users     *services.UserService
	Metrics   *metrics.Metrics
	Now       = time.Now

	validate = validator.New()
)

// Deps is everything the handlers need.
type Deps struct {
	Store     *repositories.Store
	Directory directory.Directory
	Clock     *services.ClockService
	Payroll   *services.PayrollService
	Users     *services.UserService
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func InitHandlers(d Deps) {
	Store = d.Store
	Directory = d.Directory
	Clock = d.Clock
	Payroll = d.Payroll
	Users = d.Users
	Metrics = d.Metrics
	Now = time.Now
	if d.Now != nil {
		Now = d.Now
	}
}

func now() time.Time {
	return Now().UTC()
}

// periodParam reads ?month=YYYY-MM, falling back to the current month.
func periodParam(c *fiber.Ctx) payroll.Period {
	return payroll.PeriodOrCurrent(c.Query("month"), now())
}

func monthString(p payroll.Period) string {
	return fmt.Sprintf("%02d", p.Month)
}

// isoTime renders a UTC instant with an explicit +00:00 offset.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999-07:00")
}

func idParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func serverError(c *fiber.Ctx, msg string, err error) error {
	utils.Logger.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	return c.Status(fiber.StatusInternalServerError).JSON(types.APIResponse{
		Success: false,
		Error:   types.ErrInternalError,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.APIResponse{
		Success: false,
		Error:   msg,
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrSessionNotFound)
}
