package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nodeacademy/internal/database"
)

// NewTestDB creates a file-backed SQLite database in the test's temp dir with
// all migrations applied. An in-memory database would give every pooled
// connection its own empty schema. The database is closed on test cleanup.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err, "failed to apply migrations")

	return db
}

// CreateUser inserts a user row directly and returns its id
func CreateUser(t *testing.T, db *database.DB, name, email string) int64 {
	t.Helper()

	id, err := db.ExecReturningID(context.Background(),
		"INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)", name, email, "not-a-real-hash")
	require.NoError(t, err)
	return id
}
