// Package repository selects and opens the configured persistence backend.
package repository

import (
	"context"
	"fmt"

	"github.com/Rrens/support-chat/internal/config"
	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/repository/mongo"
	"github.com/Rrens/support-chat/internal/repository/postgres"
	"github.com/Rrens/support-chat/internal/repository/sqldb"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Messages domain.MessageRepository
	Users    domain.UserRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		db, err := mongo.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{
			Messages: mongo.NewMessageRepository(db),
			Users:    mongo.NewUserRepository(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{
			Messages: postgres.NewMessageRepository(db.Pool),
			Users:    postgres.NewUserRepository(db.Pool),
			ping:     db.Ping,
			close: func(context.Context) error {
				db.Close()
				return nil
			},
		}, nil

	case config.DriverMySQL, config.DriverSQLite:
		db, err := sqldb.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{
			Messages: sqldb.NewMessageRepository(db),
			Users:    sqldb.NewUserRepository(db),
			ping:     db.Ping,
			close:    func(context.Context) error { return db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
