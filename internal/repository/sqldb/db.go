// Package sqldb stores users and chat messages in MySQL or SQLite through
// database/sql. Timestamps are kept as unix milliseconds so both dialects
// compare them numerically.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/Rrens/support-chat/internal/config"
)

// DB wraps a database/sql handle together with its dialect
type DB struct {
	*sql.DB
	Driver string
}

// SQLiteDSN turns a plain file path into a modernc DSN with WAL enabled
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// Open connects to MySQL or SQLite depending on cfg.Driver
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = sql.Open("sqlite", SQLiteDSN(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite only supports one writer
		db.SetMaxIdleConns(1)
	case config.DriverMySQL:
		db, err = sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if cfg.MaxConns > 0 {
			db.SetMaxOpenConns(int(cfg.MaxConns))
		}
		if cfg.MinConns > 0 {
			db.SetMaxIdleConns(int(cfg.MinConns))
		}
		db.SetConnMaxLifetime(5 * time.Minute)
	default:
		return nil, fmt.Errorf("sqldb: unsupported driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: cfg.Driver}, nil
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
