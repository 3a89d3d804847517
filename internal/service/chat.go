package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Rrens/support-chat/internal/config"
	"github.com/Rrens/support-chat/internal/domain"
)

// ReplyGenerator produces an assistant reply for a conversation window
// ordered oldest to newest.
type ReplyGenerator interface {
	Generate(ctx context.Context, history []domain.ChatMessage) (string, error)
}

// cacheSafetyMargin keeps pages whose cursor is this close to the present
// out of the cache; a message stored within that span could still land
// before the cursor after millisecond truncation.
const cacheSafetyMargin = time.Second

// ChatService exchanges messages with the assistant and serves history
type ChatService struct {
	messages domain.MessageRepository
	gateway  ReplyGenerator
	cache    domain.HistoryCache
	cfg      config.ChatConfig
	sf       singleflight.Group
	now      func() time.Time
}

// NewChatService creates a new chat service. cache may be nil.
func NewChatService(
	messages domain.MessageRepository,
	gateway ReplyGenerator,
	cache domain.HistoryCache,
	cfg config.ChatConfig,
) *ChatService {
	return &ChatService{
		messages: messages,
		gateway:  gateway,
		cache:    cache,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SendMessage stores the user's message, asks the assistant for a reply and
// stores that too. When the assistant is unavailable the fallback text is
// returned and only the user's message remains stored.
func (s *ChatService) SendMessage(ctx context.Context, userID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.NewValidationError("message is required")
	}
	if s.cfg.MaxMessageLength > 0 && utf8.RuneCountInString(text) > s.cfg.MaxMessageLength {
		return "", domain.NewValidationError(fmt.Sprintf("message must be at most %d characters", s.cfg.MaxMessageLength))
	}

	logger := zerolog.Ctx(ctx).With().Str("user_id", userID).Logger()

	userMsg := &domain.ChatMessage{
		UserID:  userID,
		Role:    domain.RoleUser,
		Content: text,
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return "", domain.NewStorageError("failed to save message", err)
	}

	window, err := s.messages.ListBefore(ctx, userID, nil, s.cfg.ContextWindow)
	if err != nil {
		return "", domain.NewStorageError("failed to load conversation", err)
	}
	slices.Reverse(window)

	reply, err := s.gateway.Generate(ctx, window)
	if err != nil {
		logger.Warn().Err(err).Msg("AI reply failed, returning fallback")
		return s.cfg.FallbackMessage, nil
	}

	assistantMsg := &domain.ChatMessage{
		UserID:  userID,
		Role:    domain.RoleAssistant,
		Content: reply,
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		return "", domain.NewStorageError("failed to save reply", err)
	}

	logger.Debug().
		Int64("user_seq", userMsg.Seq).
		Int64("reply_seq", assistantMsg.Seq).
		Msg("Chat turn stored")

	return reply, nil
}

func (s *ChatService) normalizeLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit <= 0 {
		limit = 20
	}
	if s.cfg.MaxPageSize > 0 && limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return limit
}

// GetHistory returns one page of the user's history ordered oldest to
// newest. Pages bounded by a cursor in the past never change and are served
// through the history cache when one is configured.
func (s *ChatService) GetHistory(ctx context.Context, userID string, query domain.HistoryQuery) (*domain.HistoryPage, error) {
	query.Limit = s.normalizeLimit(query.Limit)
	if query.Cursor.IsZero() {
		query.Cursor = nil
	}

	if s.cache == nil || query.Cursor == nil || !query.Cursor.Before.Before(s.now().Add(-cacheSafetyMargin)) {
		return s.loadHistory(ctx, userID, query)
	}

	key := fmt.Sprintf("%s|%d|%d|%d|%t", userID, query.Cursor.Before.UnixNano(), query.Cursor.BeforeSeq, query.Limit, query.SeqAware())
	result, err, _ := s.sf.Do(key, func() (any, error) {
		return s.fetchWithCache(ctx, userID, query)
	})
	if err != nil {
		return nil, err
	}

	page, ok := result.(*domain.HistoryPage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return page, nil
}

func (s *ChatService) fetchWithCache(ctx context.Context, userID string, query domain.HistoryQuery) (*domain.HistoryPage, error) {
	logger := zerolog.Ctx(ctx)

	cached, err := s.cache.Get(ctx, userID, query)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("History cache get error")
	}

	page, err := s.loadHistory(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, userID, query, page); err != nil {
		logger.Warn().Err(err).Msg("History cache set error")
	}
	return page, nil
}

func (s *ChatService) loadHistory(ctx context.Context, userID string, query domain.HistoryQuery) (*domain.HistoryPage, error) {
	messages, err := s.messages.ListBefore(ctx, userID, query.Cursor, query.Limit)
	if err != nil {
		return nil, domain.NewStorageError("failed to load history", err)
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	page := &domain.HistoryPage{Messages: messages}
	if len(messages) == 0 {
		return page, nil
	}

	// hasMore must agree with the bound the client pages with next.
	// A timestamp-only cursor skips messages tied with the oldest one.
	oldest := messages[len(messages)-1]
	next := domain.Cursor{Before: oldest.Timestamp}
	if query.SeqAware() {
		next = domain.CursorOf(oldest)
	}
	page.HasMore, err = s.messages.ExistsBefore(ctx, userID, next)
	if err != nil {
		return nil, domain.NewStorageError("failed to load history", err)
	}

	slices.Reverse(page.Messages)
	return page, nil
}
