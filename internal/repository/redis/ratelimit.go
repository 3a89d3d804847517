package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/support-chat/internal/ratelimit"
)

const (
	rateLimitPrefix = "ratelimit:"
)

// RateLimiter implements ratelimit.Limiter with one Redis counter per
// (policy, key, window). INCR makes the increment-and-read atomic across
// every server instance sharing the Redis.
type RateLimiter struct {
	client *Client
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

// Allow checks if a request should be allowed based on rate limits
func (r *RateLimiter) Allow(ctx context.Context, policy ratelimit.Policy, key string) (ratelimit.Decision, error) {
	windowStart := ratelimit.WindowStart(r.now(), policy.Window)
	fullKey := fmt.Sprintf("%s%s:%s:%d", rateLimitPrefix, policy.Name, key, windowStart.Unix())

	var incrCmd *redis.IntCmd
	_, err := r.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incrCmd = pipe.Incr(ctx, fullKey)
		// Keep the key one extra second so late readers in the same
		// window never see a recreated counter.
		pipe.ExpireAt(ctx, fullKey, windowStart.Add(policy.Window+time.Second))
		return nil
	})
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	return ratelimit.NewDecision(policy, incrCmd.Val(), windowStart), nil
}

// Reset resets the current window's counter for a key
func (r *RateLimiter) Reset(ctx context.Context, policy ratelimit.Policy, key string) error {
	windowStart := ratelimit.WindowStart(r.now(), policy.Window)
	fullKey := fmt.Sprintf("%s%s:%s:%d", rateLimitPrefix, policy.Name, key, windowStart.Unix())
	return r.client.rdb.Del(ctx, fullKey).Err()
}
