package store

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shrimpsizemoose/trekker/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations for the DSN's dialect on a
// connection of its own. Being up to date is not an error.
func Migrate(dsn string) error {
	dialect := DialectOf(dsn)

	src, err := iofs.New(migrations, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dialect, dsn))
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Error.Printf("closing migrator: source=%v db=%v", srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		logger.Info.Printf("schema at version %d (dirty=%v)", version, dirty)
	}
	return nil
}

func migrateURL(dialect Dialect, dsn string) string {
	if dialect == DialectPostgres {
		rest := strings.TrimPrefix(strings.TrimPrefix(dsn, "postgresql://"), "postgres://")
		return "pgx5://" + rest
	}
	return "sqlite3://" + SQLitePath(dsn)
}
