package repository

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/support-chat/internal/config"
	"github.com/Rrens/support-chat/migrations"
)

// MigrationURL returns the golang-migrate database URL for cfg.
func MigrationURL(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return cfg.DSN, nil

	case config.DriverMySQL:
		dsn := cfg.DSN
		if !strings.Contains(dsn, "multiStatements=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "multiStatements=true"
		}
		return "mysql://" + dsn, nil

	case config.DriverSQLite:
		return "sqlite://" + strings.TrimPrefix(cfg.DSN, "file:"), nil

	case config.DriverMongo:
		u, err := url.Parse(cfg.DSN)
		if err != nil {
			return "", fmt.Errorf("invalid mongo dsn: %w", err)
		}
		if strings.Trim(u.Path, "/") == "" {
			u.Path = "/" + cfg.Name
		}
		return u.String(), nil
	}

	return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func newMigrate(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	dbURL, err := MigrationURL(cfg)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		log.Warn().Err(err).Msg("Failed to close migrator")
	}
}

// Migrate applies every pending migration for the configured driver.
func Migrate(cfg config.DatabaseConfig) error {
	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("driver", cfg.Driver).Msg("Database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Str("driver", cfg.Driver).Msg("Database migration: success")
	return nil
}

// MigrateDown rolls back every applied migration.
func MigrateDown(cfg config.DatabaseConfig) error {
	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate down: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(cfg config.DatabaseConfig) (version uint, dirty bool, err error) {
	m, err := newMigrate(cfg)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrate(m)

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
