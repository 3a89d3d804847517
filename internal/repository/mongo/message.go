package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/support-chat/internal/domain"
)

type messageDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
	Seq       int64     `bson:"seq"`
}

func (d messageDocument) toDomain() domain.ChatMessage {
	return domain.ChatMessage{
		ID:        d.ID,
		UserID:    d.UserID,
		Role:      domain.MessageRole(d.Role),
		Content:   d.Content,
		Timestamp: d.Timestamp.UTC(),
		Seq:       d.Seq,
	}
}

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	messages *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{
		messages: db.Database.Collection(messagesCollection),
		counters: db.Database.Collection(countersCollection),
		now:      time.Now,
	}
}

// nextSeq atomically increments the per-user sequence counter.
func (r *MessageRepository) nextSeq(ctx context.Context, userID string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sequence: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	seq, err := r.nextSeq(ctx, message.UserID)
	if err != nil {
		return err
	}

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = r.now()
	}
	// Mongo keeps millisecond precision; truncate so the value handed back
	// to callers is exactly what a later read returns.
	message.Timestamp = message.Timestamp.UTC().Truncate(time.Millisecond)
	message.Seq = seq

	_, err = r.messages.InsertOne(ctx, messageDocument{
		ID:        message.ID,
		UserID:    message.UserID,
		Role:      string(message.Role),
		Content:   message.Content,
		Timestamp: message.Timestamp,
		Seq:       message.Seq,
	})
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func cursorFilter(userID string, cursor *domain.Cursor) bson.M {
	filter := bson.M{"user_id": userID}
	if cursor.IsZero() {
		return filter
	}
	if cursor.BeforeSeq <= 0 {
		filter["timestamp"] = bson.M{"$lt": cursor.Before}
		return filter
	}
	filter["$or"] = bson.A{
		bson.M{"timestamp": bson.M{"$lt": cursor.Before}},
		bson.M{"timestamp": cursor.Before, "seq": bson.M{"$lt": cursor.BeforeSeq}},
	}
	return filter
}

// ListBefore returns up to limit messages older than cursor, newest first
func (r *MessageRepository) ListBefore(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.messages.Find(ctx, cursorFilter(userID, cursor), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cur.Close(ctx)

	messages := make([]domain.ChatMessage, 0, limit)
	for cur.Next(ctx) {
		var doc messageDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// ExistsBefore reports whether any message sorts before cursor
func (r *MessageRepository) ExistsBefore(ctx context.Context, userID string, cursor domain.Cursor) (bool, error) {
	n, err := r.messages.CountDocuments(ctx, cursorFilter(userID, &cursor), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count messages: %w", err)
	}
	return n > 0, nil
}
