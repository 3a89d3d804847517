package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/support-chat/internal/domain"
)

// HistoryCache caches cursor-addressed history pages in Redis
type HistoryCache struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewHistoryCache creates a new history cache
func NewHistoryCache(client *Client, prefix string, ttl time.Duration) *HistoryCache {
	if prefix == "" {
		prefix = "chat:history"
	}
	return &HistoryCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *HistoryCache) key(userID string, q domain.HistoryQuery) string {
	cursor := "latest"
	if !q.Cursor.IsZero() {
		cursor = fmt.Sprintf("%d:%d", q.Cursor.Before.UnixMilli(), q.Cursor.BeforeSeq)
	}
	mode := "ts"
	if q.SeqAware() {
		mode = "seq"
	}
	return fmt.Sprintf("%s:%s:%s:%d:%s", c.prefix, userID, cursor, q.Limit, mode)
}

// Get retrieves a cached page
func (c *HistoryCache) Get(ctx context.Context, userID string, q domain.HistoryQuery) (*domain.HistoryPage, error) {
	data, err := c.client.rdb.Get(ctx, c.key(userID, q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var page domain.HistoryPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history page: %w", err)
	}

	return &page, nil
}

// Set caches a page
func (c *HistoryCache) Set(ctx context.Context, userID string, q domain.HistoryQuery, page *domain.HistoryPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal history page: %w", err)
	}

	if err := c.client.rdb.Set(ctx, c.key(userID, q), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}
