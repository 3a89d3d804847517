package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/support-chat/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db  *DB
	now func() time.Time
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

// Create inserts a new message; seq is the auto-increment key
func (r *MessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = r.now()
	}
	message.Timestamp = message.Timestamp.UTC().Truncate(time.Millisecond)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.ID,
		message.UserID,
		string(message.Role),
		message.Content,
		toMillis(message.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message seq: %w", err)
	}
	message.Seq = seq
	return nil
}

func cursorClause(cursor *domain.Cursor) (string, []any) {
	if cursor.IsZero() {
		return "", nil
	}
	before := toMillis(cursor.Before)
	if cursor.BeforeSeq <= 0 {
		return " AND created_at < ?", []any{before}
	}
	return " AND (created_at < ? OR (created_at = ? AND seq < ?))",
		[]any{before, before, cursor.BeforeSeq}
}

// ListBefore returns up to limit messages older than cursor, newest first
func (r *MessageRepository) ListBefore(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ChatMessage, error) {
	clause, cursorArgs := cursorClause(cursor)
	args := append([]any{userID}, cursorArgs...)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, created_at, seq
		FROM chat_messages
		WHERE user_id = ?`+clause+`
		ORDER BY created_at DESC, seq DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0, limit)
	for rows.Next() {
		var (
			m       domain.ChatMessage
			roleStr string
			created int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &roleStr, &m.Content, &created, &m.Seq); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(roleStr)
		m.Timestamp = fromMillis(created)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// ExistsBefore reports whether any message sorts before cursor
func (r *MessageRepository) ExistsBefore(ctx context.Context, userID string, cursor domain.Cursor) (bool, error) {
	clause, cursorArgs := cursorClause(&cursor)
	args := append([]any{userID}, cursorArgs...)

	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM chat_messages WHERE user_id = ?`+clause+` LIMIT 1`, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check older messages: %w", err)
	}
	return true, nil
}
