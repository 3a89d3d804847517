package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/security"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   domain.UserRepository
	jwtManager *security.JWTManager
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new user account and returns its token
func (s *AuthService) Signup(ctx context.Context, input domain.UserCreate) (*domain.TokenResponse, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	exists, err := s.userRepo.Exists(ctx, email, username)
	if err != nil {
		return nil, domain.NewStorageError("failed to check user", err)
	}
	if exists {
		return nil, domain.NewValidationError("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, domain.NewStorageError("failed to create user", err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("User signed up")

	return s.issue(user)
}

// Login authenticates a user and returns a token
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, domain.NewStorageError("failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewAuthError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.NewAuthError("invalid credentials")
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*domain.TokenResponse, error) {
	token, err := s.jwtManager.Generate(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &domain.TokenResponse{Token: token}, nil
}
