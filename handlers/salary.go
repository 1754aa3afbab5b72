package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"timetracking/export"
	"timetracking/middleware"
	"timetracking/payroll"
	"timetracking/repositories"
	"timetracking/types"
)

// PayrollPage shows the logged in user's statement for ?month.
func PayrollPage(c *fiber.Ctx) error {
	id := middleware.Current(c)
	p := periodParam(c)

	m, err := Payroll.Month(c.UserContext(), id.UserID, p)
	if isNotFound(err) {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if err != nil {
		return serverError(c, "Failed to build payroll", err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data: fiber.Map{
			"username": id.Username,
			"is_admin": id.IsAdmin,
			"year":     p.Year,
			"month":    monthString(p),
			"payroll":  m.Statement,
		},
	})
}

func sendPDF(c *fiber.Ctx, userID uuid.UUID, missing string) error {
	p := periodParam(c)
	pdf, name, err := Payroll.PDF(c.UserContext(), userID, p)
	if isNotFound(err) {
		return c.Redirect(missing, fiber.StatusSeeOther)
	}
	if err != nil {
		return serverError(c, types.ErrPDFError, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%s", name))
	return c.Send(pdf)
}

func PayrollPDF(c *fiber.Ctx) error {
	return sendPDF(c, middleware.Current(c).UserID, "/login")
}

func AdminPayrollPDF(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	return sendPDF(c, id, "/admin/users")
}

type PaycheckRequest struct {
	Month           string `form:"month" validate:"required"`
	OvertimeHours   string `form:"overtime_hours"`
	BonusAmount     string `form:"bonus_amount"`
	AllowanceAmount string `form:"allowance_amount"`
	PaymentMethod   string `form:"payment_method"`
	Status          string `form:"status"`
}

// SavePaycheck freezes the month for a user. Bad numbers count as zero.
func SavePaycheck(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	detail := "/admin/users/" + id.String()

	var req PaycheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Redirect(detail, fiber.StatusSeeOther)
	}
	if err := validate.Struct(req); err != nil {
		return c.Redirect(detail, fiber.StatusSeeOther)
	}
	p, ok := payroll.ParseMonth(req.Month)
	if !ok {
		return c.Redirect(detail, fiber.StatusSeeOther)
	}

	_, err := Payroll.SavePaycheck(c.UserContext(), id, p, payroll.Adjustments{
		OvertimeHours:   payroll.DecimalOrZero(req.OvertimeHours),
		BonusAmount:     payroll.DecimalOrZero(req.BonusAmount),
		AllowanceAmount: payroll.DecimalOrZero(req.AllowanceAmount),
		PaymentMethod:   req.PaymentMethod,
		Status:          req.Status,
	})
	if isNotFound(err) {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	}
	if err != nil {
		return serverError(c, "Failed to save paycheck", err)
	}
	return c.Redirect(detail+"?month="+p.String(), fiber.StatusSeeOther)
}

type PaycheckRow struct {
	User    repositories.UserMonth `json:"user"`
	Payroll payroll.Statement      `json:"payroll"`
	Status  string                 `json:"status"`
}

// AdminPaychecks lists every user's payroll for ?month.
func AdminPaychecks(c *fiber.Ctx) error {
	p := periodParam(c)
	rows, err := Payroll.PeriodOverview(c.UserContext(), p)
	if err != nil {
		return serverError(c, "Failed to build paychecks overview", err)
	}

	out := make([]PaycheckRow, len(rows))
	for i, r := range rows {
		out[i] = PaycheckRow{User: r.User, Payroll: r.Statement, Status: r.Status}
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data: fiber.Map{
			"rows":  out,
			"year":  p.Year,
			"month": monthString(p),
		},
	})
}

func ExportPaychecks(c *fiber.Ctx) error {
	p := periodParam(c)
	data, err := Payroll.Export(c.UserContext(), p)
	if err != nil {
		return serverError(c, types.ErrExportError, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", export.FileName(p)))
	return c.Send(data)
}
