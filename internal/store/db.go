package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/config"
)

// Dialect names the SQL engine behind a DSN.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

// DB is the shared, bounded connection pool. Queries are written with ?
// placeholders and rebound for the driver.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// DialectOf picks the engine from the DSN prefix.
func DialectOf(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// SQLitePath strips a sqlite:// or sqlite3:// scheme and adds the pragmas
// every connection needs.
func SQLitePath(dsn string) string {
	path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite3://"), "sqlite://")
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqliteParams
}

// NewDB opens a pool for the configured DSN with sane defaults.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dialect := DialectOf(cfg.DSN)

	var (
		db  *sqlx.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		db, err = sqlx.Open("pgx", cfg.DSN)
	default:
		db, err = sqlx.Open("sqlite3", SQLitePath(cfg.DSN))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	maxOpen, maxIdle, lifetime := cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnLifetime.Duration
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", dialect, err)
	}

	logger.Debug.Printf("database pool ready: dialect=%s max_open=%d", dialect, maxOpen)
	return &DB{DB: db, Dialect: dialect}, nil
}

// Close closes the underlying pool.
func (d *DB) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// Healthy pings the pool.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.DB == nil {
		return false
	}
	return d.PingContext(ctx) == nil
}

// WithTx runs fn inside one transaction on a connection held exclusively for
// the call. The transaction commits when fn returns nil and rolls back when
// fn fails or panics; the connection goes back to the pool either way.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error.Printf("rollback failed: %v", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return Classify(err)
	}
	return nil
}
