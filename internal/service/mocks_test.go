package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/support-chat/internal/domain"
)

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) ListBefore(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, userID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *MockMessageRepository) ExistsBefore(ctx context.Context, userID string, cursor domain.Cursor) (bool, error) {
	args := m.Called(ctx, userID, cursor)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

// MockReplyGenerator mocks the AI gateway
type MockReplyGenerator struct {
	mock.Mock
}

func (m *MockReplyGenerator) Generate(ctx context.Context, history []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, history)
	return args.String(0), args.Error(1)
}

// MockHistoryCache mocks the HistoryCache interface
type MockHistoryCache struct {
	mock.Mock
}

func (m *MockHistoryCache) Get(ctx context.Context, userID string, query domain.HistoryQuery) (*domain.HistoryPage, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryPage), args.Error(1)
}

func (m *MockHistoryCache) Set(ctx context.Context, userID string, query domain.HistoryQuery, page *domain.HistoryPage) error {
	args := m.Called(ctx, userID, query, page)
	return args.Error(0)
}
