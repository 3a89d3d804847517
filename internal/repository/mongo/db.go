package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/Rrens/support-chat/internal/config"
)

const (
	messagesCollection = "chat_messages"
	countersCollection = "chat_counters"
	usersCollection    = "users"
)

// DB wraps the Mongo client and the application database
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewDB connects to MongoDB. The database name comes from the URI path,
// falling back to cfg.Name.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	cs, err := connstring.ParseAndValidate(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongo uri: %w", err)
	}
	name := cs.Database
	if name == "" {
		name = cfg.Name
	}
	if name == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	clientOpts := options.Client().
		ApplyURI(cfg.DSN).
		SetConnectTimeout(10 * time.Second)
	if cfg.MaxConns > 0 {
		clientOpts.SetMaxPoolSize(uint64(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		clientOpts.SetMinPoolSize(uint64(cfg.MinConns))
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &DB{Client: client, Database: client.Database(name)}, nil
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

// Close disconnects the client
func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
