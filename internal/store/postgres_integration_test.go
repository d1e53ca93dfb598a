//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/model"
	"attendance-tracker/internal/store"
)

func setupPostgres(t *testing.T) *store.DB {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "attendance",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, store.Migrate(dsn))
	db, err := store.NewDB(ctx, config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgresUpsertAndConflicts(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	assert.Equal(t, store.DialectPostgres, db.Dialect)

	var studentID int64
	require.NoError(t, db.Get(&studentID, db.Rebind(
		"INSERT INTO students (admission_no, name, password_hash) VALUES (?, ?, ?) RETURNING id"),
		"A1", "Asha", "x"))

	upsert := db.Rebind(`INSERT INTO attendance (student_id, date, period_no, status) VALUES (?, ?, ?, ?)
		ON CONFLICT (student_id, date, period_no) DO UPDATE SET status = excluded.status`)
	day := model.NewDate(2024, time.January, 3)

	for _, status := range []string{"present", "absent"} {
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, upsert, studentID, day, 1, status)
			return err
		})
		require.NoError(t, err)
	}

	var rows []model.HistoryRow
	require.NoError(t, db.Select(&rows, db.Rebind("SELECT date, period_no, status FROM attendance WHERE student_id = ?"), studentID))
	require.Len(t, rows, 1)
	assert.Equal(t, model.StatusAbsent, rows[0].Status)
	assert.Equal(t, "2024-01-03", rows[0].Date.String())

	_, err := db.Exec(db.Rebind("INSERT INTO students (admission_no, name, password_hash) VALUES (?, ?, ?)"), "A1", "Dup", "x")
	assert.ErrorIs(t, store.Classify(err), model.ErrConflict)
}
