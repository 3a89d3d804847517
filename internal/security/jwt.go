package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rrens/support-chat/internal/domain"
)

// TokenVerifier resolves an opaque bearer token to the user it identifies.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 tokens
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, ttl time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Generate issues a token for the user
func (m *JWTManager) Generate(userID, username string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}

	now := m.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims
func (m *JWTManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

// Verify implements TokenVerifier. Failures are reported as domain auth
// errors.
func (m *JWTManager) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", domain.NewAuthError("no token, authorization denied")
	}
	claims, err := m.Parse(tokenString)
	if err != nil {
		return "", &domain.Error{Kind: domain.ErrAuth, Message: "token is not valid", Err: err}
	}
	return claims.Subject, nil
}

// TTL returns the token lifetime
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}
