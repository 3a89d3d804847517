package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/security"
)

func newJWT() *security.JWTManager {
	return security.NewJWTManager("test-secret", time.Hour, "support-chat")
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		jwt := newJWT()
		svc := NewAuthService(users, jwt)

		var created *domain.User
		users.On("Exists", ctx, "alice@example.com", "alice").Return(false, nil)
		users.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
			Return(nil)

		resp, err := svc.Signup(ctx, domain.UserCreate{
			Username: " alice ",
			Email:    "Alice@Example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, "alice@example.com", created.Email)
		assert.Equal(t, "alice", created.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))

		userID, err := jwt.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, created.ID, userID)
		users.AssertExpectations(t)
	})

	t.Run("duplicate", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("Exists", ctx, "bob@example.com", "bob").Return(true, nil)

		_, err := NewAuthService(users, newJWT()).Signup(ctx, domain.UserCreate{
			Username: "bob", Email: "bob@example.com", Password: "secret123",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "user already exists", domain.Message(err, ""))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate detected on insert", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("Exists", ctx, "bob@example.com", "bob").Return(false, nil)
		users.On("Create", ctx, mock.Anything).Return(domain.NewValidationError("user already exists"))

		_, err := NewAuthService(users, newJWT()).Signup(ctx, domain.UserCreate{
			Username: "bob", Email: "bob@example.com", Password: "secret123",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("store failure", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("Exists", ctx, mock.Anything, mock.Anything).Return(false, errors.New("down"))

		_, err := NewAuthService(users, newJWT()).Signup(ctx, domain.UserCreate{
			Username: "bob", Email: "bob@example.com", Password: "secret123",
		})
		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: string(hash)}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)
		jwt := newJWT()

		resp, err := NewAuthService(users, jwt).Login(ctx, domain.UserLogin{Email: "ALICE@example.com", Password: "secret123"})
		require.NoError(t, err)

		userID, err := jwt.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)

		_, err := NewAuthService(users, newJWT()).Login(ctx, domain.UserLogin{Email: "alice@example.com", Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrAuth)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

		_, err := NewAuthService(users, newJWT()).Login(ctx, domain.UserLogin{Email: "ghost@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, domain.ErrAuth)
		assert.Equal(t, "invalid credentials", domain.Message(err, ""))
	})
}
