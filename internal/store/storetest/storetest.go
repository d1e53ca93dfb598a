// Package storetest opens throwaway migrated databases for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/store"
)

// New returns a migrated SQLite database in a temp dir. It is closed when
// the test ends.
func New(t testing.TB) *store.DB {
	t.Helper()

	dsn := "sqlite://" + filepath.Join(t.TempDir(), "attendance.db")
	require.NoError(t, store.Migrate(dsn), "failed to migrate test database")

	db, err := store.NewDB(context.Background(), config.DatabaseConfig{DSN: dsn, MaxOpenConns: 4, MaxIdleConns: 4})
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

// Exec runs raw fixture SQL written with ? placeholders.
func Exec(t testing.TB, db *store.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(db.Rebind(query), args...)
	require.NoError(t, err, "fixture failed: %s", query)
}
