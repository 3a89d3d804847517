package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rrens/support-chat/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool, now: time.Now}
}

// Create inserts a new message; seq comes from the BIGSERIAL column
func (r *MessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = r.now()
	}
	message.Timestamp = message.Timestamp.UTC().Truncate(time.Millisecond)

	query := `
		INSERT INTO chat_messages (id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`

	err := r.pool.QueryRow(ctx, query,
		message.ID,
		message.UserID,
		string(message.Role),
		message.Content,
		message.Timestamp,
	).Scan(&message.Seq)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// cursorClause returns the WHERE fragment bounding rows by cursor, with
// placeholders numbered from next.
func cursorClause(cursor *domain.Cursor, next int) (string, []any) {
	if cursor.IsZero() {
		return "", nil
	}
	if cursor.BeforeSeq <= 0 {
		return fmt.Sprintf(" AND created_at < $%d", next), []any{cursor.Before}
	}
	return fmt.Sprintf(" AND (created_at, seq) < ($%d, $%d)", next, next+1),
		[]any{cursor.Before, cursor.BeforeSeq}
}

// ListBefore returns up to limit messages older than cursor, newest first
func (r *MessageRepository) ListBefore(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ChatMessage, error) {
	clause, cursorArgs := cursorClause(cursor, 2)
	args := append([]any{userID}, cursorArgs...)
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, user_id, role, content, created_at, seq
		FROM chat_messages
		WHERE user_id = $1%s
		ORDER BY created_at DESC, seq DESC
		LIMIT $%d
	`, clause, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0, limit)
	for rows.Next() {
		var m domain.ChatMessage
		var roleStr string

		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&roleStr,
			&m.Content,
			&m.Timestamp,
			&m.Seq,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(roleStr)
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// ExistsBefore reports whether any message sorts before cursor
func (r *MessageRepository) ExistsBefore(ctx context.Context, userID string, cursor domain.Cursor) (bool, error) {
	clause, cursorArgs := cursorClause(&cursor, 2)
	args := append([]any{userID}, cursorArgs...)

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM chat_messages WHERE user_id = $1%s)`, clause)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check older messages: %w", err)
	}
	return exists, nil
}
