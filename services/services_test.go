package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"timetracking/database"
	"timetracking/models"
	"timetracking/repositories"
)

func setupStore(t *testing.T) *repositories.Store {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return repositories.NewStore(db)
}

func createUser(t *testing.T, s *repositories.Store, u *models.User) *models.User {
	t.Helper()
	if u.Name == "" {
		u.Name = u.LDAPUsername
	}
	if u.PayType == "" {
		u.PayType = models.PayTypeHourly
	}
	u.IsActive = true
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Add(d time.Duration) { c.t = c.t.Add(d) }

func strp(s string) *string { return &s }
