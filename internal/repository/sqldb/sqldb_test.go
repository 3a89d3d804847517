package sqldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/support-chat/internal/config"
	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/migrations"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "chat.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := migrations.FS.ReadFile("sqlite/000001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

// steppingClock returns a clock that advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}

func seed(t *testing.T, repo *MessageRepository, userID string, n int) []domain.ChatMessage {
	t.Helper()
	ctx := context.Background()

	out := make([]domain.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		m := &domain.ChatMessage{UserID: userID, Role: role, Content: string(rune('a' + i%26))}
		require.NoError(t, repo.Create(ctx, m))
		out = append(out, *m)
	}
	return out
}

func TestMessageRepository_CreateAssignsIdentity(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	repo.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.Local) }

	m := &domain.ChatMessage{UserID: "u1", Role: domain.RoleUser, Content: "hi"}
	require.NoError(t, repo.Create(context.Background(), m))

	assert.NotEmpty(t, m.ID)
	assert.Positive(t, m.Seq)
	assert.Equal(t, time.UTC, m.Timestamp.Location())
	assert.Equal(t, 123*time.Millisecond, time.Duration(m.Timestamp.Nanosecond()))

	got, err := repo.ListBefore(context.Background(), "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *m, got[0])
}

func TestMessageRepository_PaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))
	repo.now = steppingClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), time.Second)

	all := seed(t, repo, "u1", 25)

	first, err := repo.ListBefore(ctx, "u1", nil, 20)
	require.NoError(t, err)
	require.Len(t, first, 20)
	assert.Equal(t, all[24].ID, first[0].ID)
	assert.Equal(t, all[5].ID, first[19].ID)

	more, err := repo.ExistsBefore(ctx, "u1", domain.CursorOf(first[19]))
	require.NoError(t, err)
	assert.True(t, more)

	second, err := repo.ListBefore(ctx, "u1", &domain.Cursor{Before: first[19].Timestamp}, 20)
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, all[4].ID, second[0].ID)
	assert.Equal(t, all[0].ID, second[4].ID)

	more, err = repo.ExistsBefore(ctx, "u1", domain.CursorOf(second[4]))
	require.NoError(t, err)
	assert.False(t, more)
}

func TestMessageRepository_PartitionsByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))
	repo.now = steppingClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), time.Second)

	seed(t, repo, "alice", 3)
	seed(t, repo, "bob", 2)

	got, err := repo.ListBefore(ctx, "bob", nil, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, m := range got {
		assert.Equal(t, "bob", m.UserID)
	}

	none, err := repo.ListBefore(ctx, "carol", nil, 20)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMessageRepository_SeqBreaksTimestampTies(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return ts }

	all := seed(t, repo, "u1", 6)

	var seen []string
	var cursor *domain.Cursor
	for {
		page, err := repo.ListBefore(ctx, "u1", cursor, 4)
		require.NoError(t, err)
		for _, m := range page {
			seen = append(seen, m.ID)
		}
		if len(page) == 0 {
			break
		}
		c := domain.CursorOf(page[len(page)-1])
		more, err := repo.ExistsBefore(ctx, "u1", c)
		require.NoError(t, err)
		if !more {
			break
		}
		cursor = &c
	}

	require.Len(t, seen, len(all))
	for i, m := range all {
		assert.Equal(t, m.ID, seen[len(all)-1-i])
	}

	// A timestamp-only cursor is strict and excludes every tied row.
	page, err := repo.ListBefore(ctx, "u1", &domain.Cursor{Before: ts}, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &domain.User{
		ID:           "11111111-1111-1111-1111-111111111111",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *user, *got)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := repo.Exists(ctx, "other@example.com", "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "other@example.com", "other")
	require.NoError(t, err)
	assert.False(t, exists)

	dup := *user
	dup.ID = "22222222-2222-2222-2222-222222222222"
	dup.Username = "alice2"
	err = repo.Create(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", SQLiteDSN("/tmp/a.db"))
	assert.Equal(t, "file::memory:", SQLiteDSN("file::memory:"))
}
