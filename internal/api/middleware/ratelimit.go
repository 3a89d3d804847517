package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rrens/support-chat/internal/api/response"
	"github.com/Rrens/support-chat/internal/ratelimit"
)

// RateLimitMiddleware rejects clients that exceed a fixed-window policy
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	policy  ratelimit.Policy
	now     func() time.Time
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter ratelimit.Limiter, policy ratelimit.Policy) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, policy: policy, now: time.Now}
}

// clientKey identifies the caller by IP; RealIP has already rewritten
// RemoteAddr when a proxy header was present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit applies the policy per client IP
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := m.limiter.Allow(r.Context(), m.policy, clientKey(r))
		if err != nil {
			// If rate limiter fails, allow the request but log the error
			zerolog.Ctx(r.Context()).Error().Err(err).Str("policy", m.policy.Name).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		resetIn := int(math.Ceil(decision.ResetAt.Sub(m.now()).Seconds()))
		if resetIn < 0 {
			resetIn = 0
		}

		w.Header().Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(resetIn))

		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(resetIn))
			response.TooManyRequests(w, m.policy.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}
