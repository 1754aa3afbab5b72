package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracking/database"
	"timetracking/models"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "timetracking version "+Version+"\n", out.String())
}

func TestStatementCommand(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "tt.db")
	t.Setenv("ENV", "dev")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("COMPANY_NAME", "Acme AG")

	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Name: "Anna Muster", LDAPUsername: "anna", PayType: models.PayTypeHourly, IsActive: true}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out := filepath.Join(dir, "anna.pdf")
	root := rootCmd()
	root.SetArgs([]string{"statement", "--user", "anna", "--month", "2024-03", "--out", out})
	require.NoError(t, root.ExecuteContext(context.Background()))

	pdf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-1.4")))
	assert.Contains(t, string(pdf), "Acme AG")
}

func TestStatementCommandRejectsBadInput(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"statement", "--user", "anna", "--month", "March"})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
