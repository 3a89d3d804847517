package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/support-chat/internal/api/response"
	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/security"
)

// TokenHeader carries the session token
const TokenHeader = "x-auth-token"

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware resolves the request token to a user
type AuthMiddleware struct {
	verifier security.TokenVerifier
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier security.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// tokenFromRequest reads x-auth-token, falling back to a bearer
// Authorization header.
func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authenticate validates the token and stores the user id in the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.verifier.Verify(tokenFromRequest(r))
		if err != nil {
			response.Unauthorized(w, domain.Message(err, "token is not valid"))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
