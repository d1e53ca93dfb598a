package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-tracker/internal/model"
	"attendance-tracker/internal/store"
	"attendance-tracker/internal/store/storetest"
)

func countClasses(t *testing.T, db *store.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM classes"))
	return n
}

func TestMigrateSeedsPeriods(t *testing.T) {
	db := storetest.New(t)

	var labels []string
	require.NoError(t, db.Select(&labels, "SELECT label FROM periods ORDER BY period_no"))
	require.Len(t, labels, 8)
	assert.Equal(t, "Period 1", labels[0])
	assert.Equal(t, "Period 8", labels[7])
}

func TestWithTxCommits(t *testing.T) {
	db := storetest.New(t)

	err := db.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec(tx.Rebind("INSERT INTO classes (name) VALUES (?)"), "10-A")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countClasses(t, db))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := storetest.New(t)
	boom := errors.New("boom")

	err := db.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(tx.Rebind("INSERT INTO classes (name) VALUES (?)"), "10-A"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countClasses(t, db))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := storetest.New(t)

	assert.Panics(t, func() {
		_ = db.WithTx(context.Background(), func(tx *sqlx.Tx) error {
			_, _ = tx.Exec(tx.Rebind("INSERT INTO classes (name) VALUES (?)"), "10-A")
			panic("boom")
		})
	})
	assert.Equal(t, 0, countClasses(t, db))

	// the connection went back to the pool in a usable state
	storetest.Exec(t, db, "INSERT INTO classes (name) VALUES (?)", "10-B")
	assert.Equal(t, 1, countClasses(t, db))
}

func TestClassifyUniqueViolation(t *testing.T) {
	db := storetest.New(t)
	storetest.Exec(t, db, "INSERT INTO classes (name) VALUES (?)", "10-A")

	_, err := db.Exec(db.Rebind("INSERT INTO classes (name) VALUES (?)"), "10-A")
	require.Error(t, err)
	assert.True(t, store.IsUniqueViolation(err))
	assert.ErrorIs(t, store.Classify(err), model.ErrConflict)
}

func TestClassifyForeignKeyIsStorage(t *testing.T) {
	db := storetest.New(t)

	_, err := db.Exec(db.Rebind("INSERT INTO students (admission_no, name, password_hash, class_id) VALUES (?, ?, ?, ?)"),
		"A1", "Asha", "x", 999)
	require.Error(t, err)
	assert.False(t, store.IsUniqueViolation(err))
	assert.ErrorIs(t, store.Classify(err), model.ErrStorage)
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, store.Classify(nil))
	assert.ErrorIs(t, store.Classify(sql.ErrNoRows), model.ErrNotFound)
	assert.ErrorIs(t, store.Classify(errors.New("disk full")), model.ErrStorage)

	invalid := model.Invalidf("bad")
	assert.Same(t, invalid, store.Classify(invalid))
	assert.ErrorIs(t, store.Classify(context.Canceled), context.Canceled)
}

func TestDialectOf(t *testing.T) {
	assert.Equal(t, store.DialectPostgres, store.DialectOf("postgres://u:p@localhost/db"))
	assert.Equal(t, store.DialectPostgres, store.DialectOf("postgresql://u:p@localhost/db"))
	assert.Equal(t, store.DialectSQLite, store.DialectOf("sqlite:///tmp/a.db"))
	assert.Equal(t, store.DialectSQLite, store.DialectOf("./data/a.db"))
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "/tmp/a.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", store.SQLitePath("sqlite:///tmp/a.db"))
	assert.Equal(t, "a.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", store.SQLitePath("sqlite3://a.db"))
	assert.Equal(t, "a.db?mode=ro", store.SQLitePath("a.db?mode=ro"))
}
