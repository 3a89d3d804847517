package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/ratelimit"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewFromClient(rdb), mr
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client)

	now := time.Now().Truncate(time.Minute).Add(10 * time.Second)
	limiter.now = func() time.Time { return now }

	policy := ratelimit.Policy{Name: "auth", Limit: 5, Window: time.Minute}
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := limiter.Allow(ctx, policy, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 5-i, d.Remaining)
	}

	d, err := limiter.Allow(ctx, policy, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, now.Truncate(time.Minute).Add(time.Minute), d.ResetAt)

	// Next window starts a fresh counter.
	now = now.Add(time.Minute)
	d, err = limiter.Allow(ctx, policy, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestRateLimiter_SetsExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewRateLimiter(client)
	policy := ratelimit.Policy{Name: "global", Limit: 50, Window: time.Minute}

	_, err := limiter.Allow(context.Background(), policy, "ip")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestRateLimiter_Reset(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client)
	policy := ratelimit.Policy{Name: "auth", Limit: 1, Window: time.Hour}
	ctx := context.Background()

	_, err := limiter.Allow(ctx, policy, "ip")
	require.NoError(t, err)
	d, err := limiter.Allow(ctx, policy, "ip")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	require.NoError(t, limiter.Reset(ctx, policy, "ip"))
	d, err = limiter.Allow(ctx, policy, "ip")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestHistoryCache_GetSet(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewHistoryCache(client, "", time.Minute)
	ctx := context.Background()

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	query := domain.HistoryQuery{Limit: 2, Cursor: &domain.Cursor{Before: ts}}

	_, err := cache.Get(ctx, "user-1", query)
	assert.True(t, errors.Is(err, domain.ErrCacheMiss))

	page := &domain.HistoryPage{
		Messages: []domain.ChatMessage{
			{ID: "a", Role: domain.RoleUser, Content: "hi", Timestamp: ts.Add(-2 * time.Second), Seq: 1},
			{ID: "b", Role: domain.RoleAssistant, Content: "hello", Timestamp: ts.Add(-time.Second), Seq: 2},
		},
		HasMore: true,
	}
	require.NoError(t, cache.Set(ctx, "user-1", query, page))

	got, err := cache.Get(ctx, "user-1", query)
	require.NoError(t, err)
	assert.Equal(t, page, got)

	// Pages are scoped per user.
	_, err = cache.Get(ctx, "user-2", query)
	assert.True(t, errors.Is(err, domain.ErrCacheMiss))
}

func TestHistoryCache_SeparatesPagingModes(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewHistoryCache(client, "", time.Minute)
	ctx := context.Background()

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	byTime := domain.HistoryQuery{Limit: 1, Cursor: &domain.Cursor{Before: ts}}
	bySeq := domain.HistoryQuery{Limit: 1, Cursor: &domain.Cursor{Before: ts}, SeqPaging: true}

	require.NoError(t, cache.Set(ctx, "user-1", bySeq, &domain.HistoryPage{Messages: []domain.ChatMessage{}, HasMore: true}))

	_, err := cache.Get(ctx, "user-1", byTime)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	got, err := cache.Get(ctx, "user-1", bySeq)
	require.NoError(t, err)
	assert.True(t, got.HasMore)
}
