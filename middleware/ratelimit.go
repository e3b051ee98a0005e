// ABOUTME: Rate limiting middleware with fixed-window counters
// ABOUTME: Limits login, refresh and upload bursts per client IP or session cookie

package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Cookies that identify a browser session on the board backend.
const (
	SessionCookieName     = "JSESSIONID"
	AccessTokenCookieName = "accessToken"
	RefreshCookieName     = "refreshToken"
)

// counter tracks requests within a fixed time window.
type counter struct {
	count     int
	expiresAt time.Time
}

// RateLimiter enforces a maximum number of requests per time window.
// Each key gets an independent counter.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*counter
	limit   int
	window  time.Duration
	created int // windows opened since the last sweep
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*counter),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether a request for key is permitted, and otherwise how
// long until its window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, exists := rl.windows[key]

	// The boundary instant opens a new window
	if !exists || !now.Before(c.expiresAt) {
		rl.windows[key] = &counter{count: 1, expiresAt: now.Add(rl.window)}

		rl.created++
		if rl.created >= 100 {
			rl.sweep(now)
			rl.created = 0
		}
		return true, 0
	}

	if c.count < rl.limit {
		c.count++
		return true, 0
	}
	return false, c.expiresAt.Sub(now)
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// sweep removes expired entries. Must be called while holding rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, c := range rl.windows {
		if !now.Before(c.expiresAt) {
			delete(rl.windows, k)
		}
	}
}

// ClientIP extracts the client IP from X-Forwarded-For (leftmost) or
// RemoteAddr. X-Forwarded-For is only trustworthy behind a proxy that sets it.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" && net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// SessionOrIP keys by the backend session or refresh cookie when present.
func SessionOrIP(r *http.Request) string {
	for _, name := range []string{SessionCookieName, RefreshCookieName} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return "session:" + c.Value
		}
	}
	return ClientIP(r)
}

// RateLimit returns middleware that enforces limits using limiter and
// keyFunc. A nil limiter or keyFunc disables it; an empty key passes through.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if limiter == nil || keyFunc == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next(w, r)
				return
			}

			allowed, retryAfter := limiter.Allow(key)
			if allowed {
				next(w, r)
				return
			}

			retrySeconds := int(math.Ceil(retryAfter.Seconds()))
			slog.Warn("Rate limit exceeded", "key", key, "path", sanitizePath(r.URL.Path), "retry_after", retrySeconds)

			w.Header().Set("Retry-After", fmt.Sprintf("%d", retrySeconds))
			WriteJSONError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Try again in %d seconds.", retrySeconds), CodeRateLimited)
		}
	}
}
