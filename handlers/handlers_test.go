// ABOUTME: Tests for the edge server handlers
// ABOUTME: Covers routing, pages, static files, health, env.js, API proxy and upload proxy

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozyrim/3-bella-han-comunity-frontend/config"
	"github.com/cozyrim/3-bella-han-comunity-frontend/middleware"
)

// writeStaticTree lays out a minimal public/ directory.
func writeStaticTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"pages/index.html":       "<h1>feed</h1>",
		"pages/login.html":       "<h1>login</h1>",
		"pages/signup.html":      "<h1>signup</h1>",
		"pages/post-detail.html": "<h1>post</h1>",
		"pages/404.html":         "<h1>missing</h1>",
		"css/style.css":          "body{}",
		"js/app.js":              "console.log(1)",
		"images/empty/.keep":     "",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "0",
		Env:              "development",
		StaticDir:        writeStaticTree(t),
		MaxUploadBytes:   10 << 20,
		BackendURL:       backendURL,
		APIPrefix:        "/api/v1",
		PublicAPIBaseURL: "/api/v1",
		UpstreamTimeout:  5 * time.Second,
		StaticURL:        "https://cdn.board.test",
		RateLimitAuth:    5,
		RateLimitUpload:  10,
		RateLimitDefault: 100,
	}
}

// newTestServer builds the full mux around cfg and returns a test server.
func newTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h, err := NewHandler(ctx, cfg, &http.Client{Timeout: 5 * time.Second})
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(middleware.Handler(mux, middleware.LoginState(nil)))
	t.Cleanup(srv.Close)
	return srv, h
}

// noRedirect returns a client that reports redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeError(t *testing.T, resp *http.Response) (string, string) {
	t.Helper()
	defer resp.Body.Close()
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Message, body.Code
}

func TestRoutes_AllRoutesHaveRequiredFields(t *testing.T) {
	_, h := newTestServer(t, testConfig(t, "http://backend.test"))

	routes := h.Routes()
	require.NotEmpty(t, routes)
	for i, rt := range routes {
		assert.NotEmpty(t, rt.Path, "route %d", i)
		assert.NotNil(t, rt.Handler, "route %d", i)
		assert.True(t, strings.HasPrefix(rt.Path, "/"), "route %d: %q", i, rt.Path)
	}
}

func TestRoutes_NoDuplicatePatterns(t *testing.T) {
	_, h := newTestServer(t, testConfig(t, "http://backend.test"))

	seen := make(map[string]bool)
	for _, rt := range h.Routes() {
		assert.False(t, seen[rt.Pattern()], "duplicate route: %s", rt.Pattern())
		seen[rt.Pattern()] = true
	}
}

func TestRoutes_ExpectedEndpoints(t *testing.T) {
	_, h := newTestServer(t, testConfig(t, "http://backend.test"))

	expected := map[string]bool{
		"GET /healthz":         false,
		"GET /env.js":          false,
		"GET /{$}":             false,
		"GET /login":           false,
		"GET /signup":          false,
		"GET /profile":         false,
		"GET /change-password": false,
		"GET /create-post":     false,
		"GET /post-detail":     false,
		"GET /edit-post":       false,
		"POST /api/upload":     false,
		"/api/v1/":             false,
		"/":                    false,
	}
	for _, rt := range h.Routes() {
		if _, ok := expected[rt.Pattern()]; ok {
			expected[rt.Pattern()] = true
		}
	}
	for pattern, found := range expected {
		assert.True(t, found, "missing route %s", pattern)
	}
}

func TestPages(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t, "http://backend.test"))

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "feed")

	resp, err = http.Get(srv.URL + "/post-detail?id=3")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "post")

	// Page route whose file is absent
	resp, err = http.Get(srv.URL + "/profile")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "missing")
}

func TestPages_GuestOnlyRedirectsWhenLoggedIn(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t, "http://backend.test"))

	for _, path := range []string{"/login", "/signup"} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "abc"})
		resp, err := noRedirect().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)

		resp, err = noRedirect().Get(srv.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestStatic(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t, "http://backend.test"))

	resp, err := http.Get(srv.URL + "/css/style.css")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.Equal(t, "body{}", readBody(t, resp))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "/js/nope.js"},
		{"directory", "/images/empty/"},
		{"page templates are not assets", "/pages/login.html"},
		{"traversal", "/../go.mod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Contains(t, readBody(t, resp), "missing")
		})
	}

	resp, err = http.Post(srv.URL+"/css/style.css", "text/plain", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	_, code := decodeError(t, resp)
	assert.Equal(t, middleware.CodeMethod, code)
}

func TestNotFound_WithoutTemplate(t *testing.T) {
	cfg := testConfig(t, "http://backend.test")
	require.NoError(t, os.Remove(filepath.Join(cfg.StaticDir, "pages", "404.html")))
	srv, _ := newTestServer(t, cfg)

	resp, err := http.Get(srv.URL + "/nothing-here")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "404 page not found")
}

func TestEnvJS(t *testing.T) {
	cfg := testConfig(t, "http://backend.test")
	cfg.LambdaUploadURL = "https://lambda.board.test/upload"
	srv, _ := newTestServer(t, cfg)

	resp, err := http.Get(srv.URL + "/env.js")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/javascript")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	body := readBody(t, resp)
	require.True(t, strings.HasPrefix(body, "window.__ENV__ = "), body)
	js := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(body, "window.__ENV__ = ")), ";")

	var env map[string]string
	require.NoError(t, json.Unmarshal([]byte(js), &env))
	assert.Equal(t, "/api/v1", env["API_BASE_URL"])
	assert.Equal(t, "https://cdn.board.test", env["STATIC_URL"])
	assert.Equal(t, "/api/upload", env["LAMBDA_UPLOAD_URL"])
}

func TestHealth(t *testing.T) {
	var probes atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	srv, _ := newTestServer(t, testConfig(t, backend.URL))

	for range 3 {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Status  string        `json:"status"`
			Backend BackendStatus `json:"backend"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, "ok", body.Status)
		assert.True(t, body.Backend.Reachable)
		assert.Equal(t, http.StatusUnauthorized, body.Backend.Status)
	}
	assert.Equal(t, int32(1), probes.Load(), "probe result should be cached")
}

func TestHealth_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	backend.Close()

	srv, _ := newTestServer(t, testConfig(t, backend.URL))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "degraded", body["status"])
}

func TestProxyAPI(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/posts", r.URL.Path)
		assert.Equal(t, "cursor=9&size=5", r.URL.RawQuery)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Forwarded-For"))

		if c, err := r.Cookie(middleware.RefreshCookieName); assert.NoError(t, err) {
			assert.Equal(t, "r1", c.Value)
		}

		http.SetCookie(w, &http.Cookie{Name: middleware.RefreshCookieName, Value: "r2", HttpOnly: true})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"items":[],"hasNext":false}}`))
	}))
	defer backend.Close()

	srv, _ := newTestServer(t, testConfig(t, backend.URL))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/posts?cursor=9&size=5", nil)
	req.Header.Set("Authorization", "Bearer tok")
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookieName, Value: "r1"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "refreshToken=r2")
	assert.JSONEq(t, `{"data":{"items":[],"hasNext":false}}`, readBody(t, resp))
}

func TestProxyAPI_PassesBackendErrorsThrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"not yours","code":"FORBIDDEN"}`))
	}))
	defer backend.Close()

	srv, _ := newTestServer(t, testConfig(t, backend.URL))

	resp, err := http.Post(srv.URL+"/api/v1/posts/1/likes", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	msg, code := decodeError(t, resp)
	assert.Equal(t, "not yours", msg)
	assert.Equal(t, "FORBIDDEN", code)
}

func TestProxyAPI_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	backend.Close()

	srv, _ := newTestServer(t, testConfig(t, backend.URL))

	resp, err := http.Get(srv.URL + "/api/v1/posts")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	msg, code := decodeError(t, resp)
	assert.Equal(t, msgUpstreamFailed, msg)
	assert.Equal(t, middleware.CodeBadGateway, code)
}

func TestProxyAPI_RateLimitsLogin(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	cfg := testConfig(t, backend.URL)
	cfg.RateLimitEnabled = true
	cfg.RateLimitAuth = 2
	srv, _ := newTestServer(t, cfg)

	var last *http.Response
	for range 3 {
		resp, err := http.Post(srv.URL+"/api/v1/auth/login", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		if last != nil {
			last.Body.Close()
		}
		last = resp
	}
	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	assert.NotEmpty(t, last.Header.Get("Retry-After"))
	_, code := decodeError(t, last)
	assert.Equal(t, middleware.CodeRateLimited, code)
	assert.Equal(t, int32(2), hits.Load())

	// Other API calls use the default budget
	resp, err := http.Get(srv.URL + "/api/v1/posts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// multipartBody builds a one-file multipart upload.
func multipartBody(t *testing.T, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cat.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("folder", "posts"))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	lambda := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			assert.Equal(t, "posts", r.FormValue("folder"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"filePath":"https://cdn.board.test/posts/cat.png"}`))
	}))
	defer lambda.Close()

	cfg := testConfig(t, "http://backend.test")
	cfg.LambdaUploadURL = lambda.URL
	srv, _ := newTestServer(t, cfg)

	body, ct := multipartBody(t, 128)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/upload", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"filePath":"https://cdn.board.test/posts/cat.png"}`, readBody(t, resp))
}

// lockedBuffer is a log sink safe to read while handlers write to it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestUpload_LogsInterruptedResponse(t *testing.T) {
	logs := &lockedBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	// Promises more bytes than it sends, then drops the connection
	lambda := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		conn, rw, err := w.(http.Hijacker).Hijack()
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		_, _ = rw.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 100\r\n\r\n{\"filePath\"")
		_ = rw.Flush()
	}))
	defer lambda.Close()

	cfg := testConfig(t, "http://backend.test")
	cfg.LambdaUploadURL = lambda.URL
	srv, _ := newTestServer(t, cfg)

	body, ct := multipartBody(t, 16)
	resp, err := http.Post(srv.URL+"/api/upload", ct, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Upload proxy: response copy failed")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpload_Errors(t *testing.T) {
	lambda := httptest.NewServer(http.NotFoundHandler())
	lambdaURL := lambda.URL
	lambda.Close()

	tests := []struct {
		name       string
		uploadURL  string
		maxBytes   int64
		size       int
		plain      bool
		wantStatus int
		wantCode   string
	}{
		{"not configured", "", 10 << 20, 16, false, http.StatusServiceUnavailable, middleware.CodeUnavailable},
		{"not multipart", lambdaURL, 10 << 20, 16, true, http.StatusBadRequest, middleware.CodeBadMultipart},
		{"too large", lambdaURL, 1 << 10, 200 << 10, false, http.StatusRequestEntityTooLarge, middleware.CodeTooLarge},
		{"upstream down", lambdaURL, 10 << 20, 16, false, http.StatusBadGateway, middleware.CodeBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "http://backend.test")
			cfg.LambdaUploadURL = tt.uploadURL
			cfg.MaxUploadBytes = tt.maxBytes
			srv, _ := newTestServer(t, cfg)

			body, ct := multipartBody(t, tt.size)
			if tt.plain {
				ct = "application/json"
			}
			resp, err := http.Post(srv.URL+"/api/upload", ct, body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			_, code := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestUpload_RequiresCSRFWhenEnabled(t *testing.T) {
	cfg := testConfig(t, "http://backend.test")
	cfg.LambdaUploadURL = "http://lambda.test"
	cfg.CSRFEnabled = true
	srv, _ := newTestServer(t, cfg)

	body, ct := multipartBody(t, 16)
	resp, err := http.Post(srv.URL+"/api/upload", ct, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_, code := decodeError(t, resp)
	assert.Equal(t, middleware.CodeCSRF, code)
}
