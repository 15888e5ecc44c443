package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// LoginRateLimiter bounds login attempts per caller network origin using a
// sliding window. Counters live in process memory for the limiter instance's
// lifetime; they survive across requests but not a restart. The limiter is
// owned and passed explicitly by whoever builds the router rather than being
// package-level state.
type LoginRateLimiter struct {
	limiter *httprate.RateLimiter
}

// NewLoginRateLimiter creates a limiter allowing attempts requests per window
// per client IP. Exceeding the limit yields 429 with the standard error
// envelope, regardless of credential correctness.
func NewLoginRateLimiter(attempts int, window time.Duration) *LoginRateLimiter {
	rl := httprate.NewRateLimiter(
		attempts,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"message":"Too many login attempts. Try again later."}}`))
		}),
	)
	return &LoginRateLimiter{limiter: rl}
}

// Handler wraps next with the rate limit check.
func (l *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return l.limiter.Handler(next)
}
