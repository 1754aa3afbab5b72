package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"timetracking/middleware"
	"timetracking/models"
	"timetracking/payroll"
	"timetracking/services"
	"timetracking/types"
	"timetracking/utils"
)

type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	StartTime string    `json:"start_time"`
	EndTime   *string   `json:"end_time"`
	Note      *string   `json:"note"`
	Source    string    `json:"source"`
}

func toSessionResponse(s models.Session) SessionResponse {
	out := SessionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		UserName:  s.User.Name,
		StartTime: isoTime(s.StartTime),
		Note:      s.Note,
		Source:    s.Source,
	}
	if s.EndTime != nil {
		end := isoTime(*s.EndTime)
		out.EndTime = &end
	}
	return out
}

func toSessionResponses(sessions []models.Session) []SessionResponse {
	out := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(s)
	}
	return out
}

func StartSession(c *fiber.Ctx) error {
	id := middleware.Current(c)
	at, err := Clock.Start(c.UserContext(), id.UserID)
	if err != nil {
		return serverError(c, "Failed to start session", err)
	}
	return c.JSON(fiber.Map{"status": "started", "time": isoTime(at)})
}

func StopSession(c *fiber.Ctx) error {
	id := middleware.Current(c)
	at, err := Clock.Stop(c.UserContext(), id.UserID)
	if err != nil {
		return serverError(c, "Failed to stop session", err)
	}
	return c.JSON(fiber.Map{"status": "stopped", "time": isoTime(at)})
}

func PresenceStatus(c *fiber.Ctx) error {
	id := middleware.Current(c)
	status, err := Clock.Status(c.UserContext(), id.UserID)
	if err != nil {
		return serverError(c, "Failed to read status", err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// ListSessions filters by ?date=YYYY-MM-DD, in the browser's local day when
// ?tz_offset is given.
func ListSessions(c *fiber.Ctx) error {
	id := middleware.Current(c)
	tzOffset := payroll.ParseOptionalInt(c.Query("tz_offset"))

	sessions, err := Clock.Sessions(c.UserContext(), id.UserID, c.Query("date"), tzOffset)
	if errors.Is(err, services.ErrInvalidDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": types.ErrInvalidDate})
	}
	if err != nil {
		return serverError(c, "Failed to list sessions", err)
	}
	return c.JSON(fiber.Map{"sessions": toSessionResponses(sessions)})
}

type NoteRequest struct {
	SessionID string `form:"session_id" json:"session_id" validate:"required,uuid"`
	Note      string `form:"note" json:"note"`
}

func AddNote(c *fiber.Ctx) error {
	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, types.ErrInvalidInput)
	}

	id := middleware.Current(c)
	err := Clock.SetNote(c.UserContext(), id.UserID, uuid.MustParse(req.SessionID), req.Note)
	if isNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": types.ErrSessionNotFound})
	}
	if err != nil {
		return serverError(c, "Failed to save note", err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

type TerminalScanRequest struct {
	UID        string `json:"uid" validate:"required"`
	TerminalID string `json:"terminal_id"`
	TS         *int64 `json:"ts"`
}

type terminalUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TerminalScan is called by the NFC reader at the door.
func TerminalScan(c *fiber.Ctx) error {
	var req TerminalScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": types.ErrInvalidInput})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": types.ErrInvalidUID})
	}

	res, err := Clock.TerminalScan(c.UserContext(), req.UID)
	switch {
	case errors.Is(err, services.ErrInvalidUID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": types.ErrInvalidUID})
	case errors.Is(err, services.ErrUnknownCard):
		utils.Logger.Info("unknown card", zap.String("uid", res.UID), zap.String("terminal", req.TerminalID))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": types.ErrUnknownCard, "uid": res.UID})
	case errors.Is(err, services.ErrUserDisabled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": types.ErrUserDisabled, "uid": res.UID})
	case err != nil:
		return serverError(c, "Failed to process scan", err)
	}

	prefix := "IN"
	if res.Action == services.ActionCheckedOut {
		prefix = "OUT"
	}
	utils.Logger.Info("terminal scan",
		zap.String("user", res.User.LDAPUsername),
		zap.String("action", res.Action),
		zap.String("terminal", strings.TrimSpace(req.TerminalID)),
	)
	return c.JSON(fiber.Map{
		"ok":         true,
		"action":     res.Action,
		"status":     res.Status,
		"time_utc":   isoTime(res.Time),
		"session_id": res.SessionID,
		"user":       terminalUser{ID: res.User.ID, Name: res.User.Name},
		"message":    prefix + ": " + res.User.Name,
	})
}
