package handlers

import (
	"github.com/gofiber/fiber/v2"

	"timetracking/payroll"
	"timetracking/repositories"
	"timetracking/types"
)

type UserRow struct {
	repositories.UserMonth
	MonthDuration string `json:"month_duration"`
}

type ManagerOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UsersOverview struct {
	Users       []UserRow       `json:"users"`
	Managers    []ManagerOption `json:"managers"`
	TotalUsers  int             `json:"total_users"`
	ActiveUsers int             `json:"active_users"`
	Year        int             `json:"year"`
	Month       string          `json:"month"`
}

func managerOptions(c *fiber.Ctx) ([]ManagerOption, error) {
	active, err := Store.Users.ListActive(c.UserContext())
	if err != nil {
		return nil, err
	}
	out := make([]ManagerOption, len(active))
	for i, u := range active {
		out[i] = ManagerOption{ID: u.ID.String(), Name: u.Name}
	}
	return out, nil
}

// AdminUsers lists every user with the time worked in the selected month.
func AdminUsers(c *fiber.Ctx) error {
	p := periodParam(c)
	start, end := p.Range()

	users, err := Store.Users.ListWithMonthSeconds(c.UserContext(), start, end, now())
	if err != nil {
		return serverError(c, "Failed to list users", err)
	}
	managers, err := managerOptions(c)
	if err != nil {
		return serverError(c, "Failed to list managers", err)
	}

	stats := UsersOverview{
		Users:      make([]UserRow, len(users)),
		Managers:   managers,
		TotalUsers: len(users),
		Year:       p.Year,
		Month:      monthString(p),
	}
	for i, u := range users {
		stats.Users[i] = UserRow{UserMonth: u, MonthDuration: payroll.FormatDuration(u.MonthSeconds)}
		if u.IsActive {
			stats.ActiveUsers++
		}
	}

	return c.JSON(types.APIResponse{Success: true, Data: stats})
}
