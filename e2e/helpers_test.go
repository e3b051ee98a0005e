// ABOUTME: Test helpers for e2e tests
// ABOUTME: Environment management, a fake backend and a fully assembled edge server

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cozyrim/3-bella-han-comunity-frontend/config"
	"github.com/cozyrim/3-bella-han-comunity-frontend/server"
)

// withTestEnv sets BACKEND_URL plus additional vars, returning a cleanup
// function that restores all original values.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withTestEnv(t, map[string]string{
//	        "CORS_ALLOWED_ORIGINS": "https://example.com",
//	    }))
//	}
func withTestEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originals := map[string]*string{}
	save := func(key string) {
		if _, done := originals[key]; done {
			return
		}
		if v, ok := os.LookupEnv(key); ok {
			originals[key] = &v
		} else {
			originals[key] = nil
		}
	}

	save("BACKEND_URL")
	for key := range extra {
		save(key)
	}

	os.Setenv("BACKEND_URL", "http://backend.example.com")
	for key, value := range extra {
		os.Setenv(key, value)
	}

	return func() {
		for key, value := range originals {
			if value == nil {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, *value)
			}
		}
	}
}

// writePublicDir lays out a minimal static tree with pages.
func writePublicDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"pages/index.html": "<h1>feed</h1>",
		"pages/login.html": "<h1>login</h1>",
		"pages/404.html":   "<h1>missing</h1>",
		"css/style.css":    "body{}",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// edgeConfig returns a config pointing at backendURL with rate limiting off.
func edgeConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:              "development",
		StaticDir:        writePublicDir(t),
		MaxUploadBytes:   1 << 20,
		BackendURL:       backendURL,
		APIPrefix:        "/api/v1",
		PublicAPIBaseURL: "/api/v1",
		UpstreamTimeout:  5 * time.Second,
		RateLimitAuth:    5,
		RateLimitUpload:  10,
		RateLimitDefault: 100,
	}
}

// startEdge serves the fully assembled edge server for cfg.
func startEdge(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	handler, err := server.New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to build server: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// writeEnvelope writes a backend-style {message, data} body.
func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"message": message, "data": data})
}

// okBackend answers every request with 200 and an empty envelope.
func okBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", nil)
	}))
	t.Cleanup(srv.Close)
	return srv
}
