package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timetracking/middleware"
)

// SetupRoutes registers every endpoint on app.
func SetupRoutes(app *fiber.App) {
	app.Use(middleware.LoadSession)

	app.Get("/login", LoginForm)
	app.Post("/login", Login)
	app.Post("/logout", Logout)
	app.Get("/", middleware.RequireLogin, Home)

	app.Post("/start", middleware.RequireAPIUser, StartSession)
	app.Post("/stop", middleware.RequireAPIUser, StopSession)
	app.Get("/status", middleware.RequireAPIUser, PresenceStatus)
	app.Get("/sessions", middleware.RequireAPIUser, ListSessions)
	app.Post("/note", middleware.RequireAPIUser, AddNote)

	app.Post("/api/terminal/scan", middleware.RequireTerminalKey, TerminalScan)

	app.Get("/payroll", middleware.RequireLogin, PayrollPage)
	app.Get("/payroll/pdf", middleware.RequireLogin, PayrollPDF)

	admin := app.Group("/admin", middleware.RequireAdmin)
	admin.Get("", func(c *fiber.Ctx) error {
		return c.Redirect("/admin/users", fiber.StatusSeeOther)
	})
	admin.Get("/users", AdminUsers)
	admin.Post("/users/create", CreateUser)
	admin.Post("/users/:id/toggle", ToggleUser)
	admin.Post("/users/:id/update", UpdateUser)
	admin.Post("/users/:id/paycheck", SavePaycheck)
	admin.Get("/users/:id/payroll/pdf", AdminPayrollPDF)
	admin.Get("/users/:id", UserDetail)
	admin.Post("/sessions/:id/update", UpdateSession)
	admin.Get("/paychecks", AdminPaychecks)
	admin.Get("/paychecks/export", ExportPaychecks)

	if Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(Metrics.Registry, promhttp.HandlerOpts{})))
	}
}
