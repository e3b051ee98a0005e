// ABOUTME: Tests for security headers, compression, panic recovery and login state
// ABOUTME: Exercises each middleware in isolation with httptest

package middleware

import (
	"compress/gzip"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Error("X-Frame-Options missing")
	}
	if rec.Header().Get("Content-Security-Policy") != "" {
		t.Error("No CSP should be sent")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should only be sent over TLS")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS expected over TLS")
	}
}

func TestCompress(t *testing.T) {
	mw, err := Compress()
	if err != nil {
		t.Fatal(err)
	}
	body := strings.Repeat("board ", 1000)
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, body)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Expected gzip encoding, headers %v", rec.Header())
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(zr)
	if string(got) != body {
		t.Error("Decompressed body mismatch")
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Content-Encoding") != "" {
		t.Error("No gzip without Accept-Encoding")
	}
}

func TestRecover(t *testing.T) {
	tests := []struct {
		name        string
		showDetails bool
		wantDetail  bool
	}{
		{"development", true, true},
		{"production", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Recover(tt.showDetails)(func(w http.ResponseWriter, r *http.Request) {
				panic("db exploded")
			})

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("Status = %d", rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if got := strings.Contains(body["message"], "db exploded"); got != tt.wantDetail {
				t.Errorf("message %q, detail shown = %v", body["message"], got)
			}
		})
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "9",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoginState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   bool
	}{
		{"no cookies", nil, false},
		{"session cookie", &http.Cookie{Name: SessionCookieName, Value: "abc"}, true},
		{"opaque access token", &http.Cookie{Name: AccessTokenCookieName, Value: "opaque"}, true},
		{"valid jwt", &http.Cookie{Name: AccessTokenCookieName, Value: signedToken(t, now.Add(time.Hour))}, true},
		{"expired jwt", &http.Cookie{Name: AccessTokenCookieName, Value: signedToken(t, now.Add(-time.Hour))}, false},
		{"empty session cookie", &http.Cookie{Name: SessionCookieName, Value: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			handler := LoginState(func() time.Time { return now })(func(w http.ResponseWriter, r *http.Request) {
				got = IsLoggedIn(r)
			})

			req := httptest.NewRequest(http.MethodGet, "/login", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			handler(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("IsLoggedIn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLoggedIn_WithoutMiddleware(t *testing.T) {
	if IsLoggedIn(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("Requests not seen by LoginState are logged out")
	}
}
