package test_utils

import (
	"database/sql"
	"testing"

	"github.com/klokku/multical/internal/config"
	"github.com/klokku/multical/internal/database"
	"github.com/stretchr/testify/require"
)

// SetupTestDB opens a fresh in-memory SQLite database with all migrations
// applied. Each call gets its own isolated database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.Storage{Driver: database.DriverSQLite, Path: ":memory:"}
	db, err := database.Open(cfg)
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() {
		db.Close()
	})

	require.NoError(t, database.Migrate(db, cfg), "failed to apply migrations")
	return db
}
