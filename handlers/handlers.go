// ABOUTME: HTTP handlers for the board edge server
// ABOUTME: Serves pages and static assets and forwards API calls to the backend

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cozyrim/3-bella-han-comunity-frontend/cache"
	"github.com/cozyrim/3-bella-han-comunity-frontend/config"
	"github.com/cozyrim/3-bella-han-comunity-frontend/middleware"
)

// healthTTL bounds how often /healthz probes the backend.
const healthTTL = 10 * time.Second

type Handler struct {
	cfg        *config.Config
	upstream   *http.Client
	backendURL *url.URL
	uploadURL  *url.URL
	apiProxy   *httputil.ReverseProxy
	health     *cache.Cache[BackendStatus]
	static     http.Handler
	started    time.Time

	authLimiter    *middleware.RateLimiter
	uploadLimiter  *middleware.RateLimiter
	defaultLimiter *middleware.RateLimiter
}

// NewHandler wires the handlers. upstream carries proxied API calls and
// uploads; its Transport is reused by the reverse proxy. ctx bounds the
// background work of the health cache.
func NewHandler(ctx context.Context, cfg *config.Config, upstream *http.Client) (*Handler, error) {
	backendURL, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	h := &Handler{
		cfg:        cfg,
		upstream:   upstream,
		backendURL: backendURL,
		health:     cache.New[BackendStatus](ctx, healthTTL),
		static:     http.FileServer(http.Dir(cfg.StaticDir)),
		started:    time.Now(),
	}

	if cfg.LambdaUploadURL != "" {
		if h.uploadURL, err = url.Parse(cfg.LambdaUploadURL); err != nil {
			return nil, fmt.Errorf("invalid upload URL: %w", err)
		}
	}

	h.apiProxy = newAPIProxy(backendURL, upstream.Transport)

	if cfg.RateLimitEnabled {
		h.authLimiter = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
		h.uploadLimiter = middleware.NewRateLimiter(cfg.RateLimitUpload, time.Minute)
		h.defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
	}

	return h, nil
}

// writeJSON writes v as a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// pagePath returns the on-disk path of a page template.
func (h *Handler) pagePath(name string) string {
	return filepath.Join(h.cfg.StaticDir, "pages", name)
}

// NotFound renders pages/404.html when present, plain text otherwise.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(h.pagePath("404.html"))
	if err != nil {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write(body)
}
