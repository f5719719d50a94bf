package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/calleja/taskforge/internal/api/response"
)

// LoginLimiter is the slice of the Redis limiter the middleware needs.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// RateLimitMiddleware throttles login attempts
type RateLimitMiddleware struct {
	limiter LoginLimiter
	keyFn   func(r *http.Request) string
}

// NewRateLimitMiddleware creates a new rate limit middleware. keyFn derives
// the counter key from the request.
func NewRateLimitMiddleware(limiter LoginLimiter, keyFn func(r *http.Request) string) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, keyFn: keyFn}
}

// Limit rejects requests over the attempt ceiling. A limiter outage fails
// open; login still works when Redis is down.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, resetTime, err := m.limiter.Allow(r.Context(), m.keyFn(r))
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}

		next.ServeHTTP(w, r)
	})
}
