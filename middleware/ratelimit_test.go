// ABOUTME: Unit tests for rate limiting middleware
// ABOUTME: Tests core limiter, key extraction, and middleware factory

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// --- RateLimiter core tests ---

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if allowed, _ := rl.Allow("k"); !allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	rl.Allow("k")
	rl.Allow("k")

	allowed, retryAfter := rl.Allow("k")
	if allowed {
		t.Fatal("Third request should be rejected")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("Expected retryAfter between 0 and 60s, got %v", retryAfter)
	}
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if allowed, _ := rl.Allow("a"); !allowed {
		t.Fatal("First request for a should be allowed")
	}
	if allowed, _ := rl.Allow("b"); !allowed {
		t.Fatal("First request for b should be allowed")
	}
	if allowed, _ := rl.Allow("a"); allowed {
		t.Fatal("Second request for a should be rejected")
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("k")
	if allowed, _ := rl.Allow("k"); allowed {
		t.Fatal("Should be limited within the window")
	}

	now = now.Add(time.Minute)
	if allowed, _ := rl.Allow("k"); !allowed {
		t.Fatal("Window boundary should start a new window")
	}
}

func TestRateLimiter_SweepsExpiredEntries(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Second)
	rl.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		rl.Allow(fmt.Sprintf("old-%d", i))
	}
	now = now.Add(2 * time.Second)
	for i := 0; i < 100; i++ {
		rl.Allow(fmt.Sprintf("new-%d", i))
	}

	if got := rl.Len(); got > 100 {
		t.Errorf("Expected expired keys swept, %d tracked", got)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(50, time.Minute)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := rl.Allow("shared"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 50 {
		t.Errorf("Expected exactly 50 allowed, got %d", allowedCount)
	}
}

// --- Key extraction ---

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		want       string
	}{
		{"leftmost XFF", "203.0.113.5, 10.0.0.1", "10.0.0.1:1234", "ip:203.0.113.5"},
		{"garbage XFF falls back", "not-an-ip", "192.0.2.1:5555", "ip:192.0.2.1"},
		{"no XFF", "", "192.0.2.9:80", "ip:192.0.2.9"},
		{"ipv6", "", "[2001:db8::1]:443", "ip:2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionOrIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1"
	if got := SessionOrIP(req); got != "ip:192.0.2.1" {
		t.Errorf("Without cookies got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "r1"})
	if got := SessionOrIP(req); got != "session:r1" {
		t.Errorf("With refresh cookie got %q", got)
	}
}

// --- Middleware ---

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	called := 0
	handler := RateLimit(nil, ClientIP)(func(w http.ResponseWriter, r *http.Request) { called++ })
	for i := 0; i < 3; i++ {
		handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}
	if called != 3 {
		t.Errorf("Disabled limiter should pass all requests, got %d", called)
	}
}

func TestRateLimitMiddleware_EmptyKeyPasses(t *testing.T) {
	called := false
	handler := RateLimit(NewRateLimiter(1, time.Minute), func(*http.Request) string { return "" })(
		func(w http.ResponseWriter, r *http.Request) { called = true })
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	if !called {
		t.Error("Unidentifiable clients pass through")
	}
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	handler := RateLimit(NewRateLimiter(1, time.Minute), ClientIP)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRecorder()
	handler(first, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("First request status = %d", first.Code)
	}

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != CodeRateLimited {
		t.Errorf("code = %q, want %q", body["code"], CodeRateLimited)
	}
}
