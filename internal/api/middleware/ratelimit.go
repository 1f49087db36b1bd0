// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests allowed in the window
	RequestLimit int
	// WindowSize is the time window for rate limiting
	WindowSize time.Duration
	// KeyFunc extracts the rate limit key from the request.
	// If nil, defaults to IP-based rate limiting.
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit creates a sliding-window rate limiter using httprate.
// A non-positive RequestLimit disables limiting.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestLimit <= 0 || cfg.WindowSize <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	retryAfter := strconv.Itoa(max(1, int(cfg.WindowSize.Seconds())))
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","detail":"Too many requests. Please try again later."}`))
		}),
	)
}

// ControlRateLimit limits slideshow control requests per client IP.
func ControlRateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{RequestLimit: requests, WindowSize: window})
}

// ReloadRateLimit guards the config reload endpoint: 10 requests per minute per IP.
func ReloadRateLimit() func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{RequestLimit: 10, WindowSize: time.Minute})
}
