package domain

import (
	"context"
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether r is a role that may be persisted.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage is one turn of a user's conversation. Messages of a user are
// totally ordered by (Timestamp, Seq).
type ChatMessage struct {
	ID        string      `json:"id"`
	UserID    string      `json:"-"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Seq       int64       `json:"seq"`
}

// Cursor is an exclusive upper bound for history queries. With a zero
// BeforeSeq only timestamps strictly older than Before match; otherwise
// messages sharing Before are included when their Seq is lower.
type Cursor struct {
	Before    time.Time
	BeforeSeq int64
}

// IsZero reports whether the cursor is unset.
func (c *Cursor) IsZero() bool {
	return c == nil || c.Before.IsZero()
}

// CursorOf returns the tie-breaking cursor that points just below m.
func CursorOf(m ChatMessage) Cursor {
	return Cursor{Before: m.Timestamp, BeforeSeq: m.Seq}
}

// Precedes reports whether m sorts strictly before the cursor bound.
func (c Cursor) Precedes(m ChatMessage) bool {
	if m.Timestamp.Before(c.Before) {
		return true
	}
	return c.BeforeSeq > 0 && m.Timestamp.Equal(c.Before) && m.Seq < c.BeforeSeq
}

// MessageRepository is the append-only message log.
type MessageRepository interface {
	// Create assigns ID, Timestamp (if zero) and Seq, then stores the message.
	Create(ctx context.Context, message *ChatMessage) error
	// ListBefore returns up to limit messages of the user, newest first,
	// that sort strictly before cursor. A nil cursor means no bound.
	ListBefore(ctx context.Context, userID string, cursor *Cursor, limit int) ([]ChatMessage, error)
	// ExistsBefore reports whether any message of the user sorts strictly
	// before cursor.
	ExistsBefore(ctx context.Context, userID string, cursor Cursor) (bool, error)
}

// HistoryQuery holds the parameters of a history page request.
type HistoryQuery struct {
	Limit  int
	Cursor *Cursor
	// SeqPaging selects (timestamp, seq) paging. hasMore then counts
	// messages that tie with the oldest returned one.
	SeqPaging bool
}

// SeqAware reports whether the page is bounded and continued by
// (timestamp, seq) rather than by timestamp alone.
func (q HistoryQuery) SeqAware() bool {
	return q.SeqPaging || (q.Cursor != nil && q.Cursor.BeforeSeq > 0)
}

// HistoryPage is one page of history ordered oldest to newest.
type HistoryPage struct {
	Messages []ChatMessage `json:"messages"`
	HasMore  bool          `json:"hasMore"`
}

// HistoryCache stores history pages that can no longer change.
type HistoryCache interface {
	// Get returns ErrCacheMiss when the page is not cached.
	Get(ctx context.Context, userID string, query HistoryQuery) (*HistoryPage, error)
	Set(ctx context.Context, userID string, query HistoryQuery, page *HistoryPage) error
}
