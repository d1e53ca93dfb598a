package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"attendance-tracker/internal/model"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure on either backend.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Classify maps a driver error onto the model error kinds. Unique
// violations become ErrConflict; everything else becomes ErrStorage.
// Errors that already carry a model kind, and context cancellation, pass
// through untouched.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrStorage),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %v", model.ErrNotFound, err)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
}
