// ABOUTME: Edge server assembly: upstream client, routes and global middleware
// ABOUTME: Serve runs the http.Server until the context ends, then drains connections

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cozyrim/3-bella-han-comunity-frontend/config"
	"github.com/cozyrim/3-bella-han-comunity-frontend/handlers"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/transport"
	"github.com/cozyrim/3-bella-han-comunity-frontend/middleware"
)

// ShutdownTimeout bounds how long in-flight requests may take after a stop signal.
const ShutdownTimeout = 10 * time.Second

// New assembles the edge server handler. ctx bounds background work such
// as the health cache sweeper.
func New(ctx context.Context, cfg *config.Config) (http.Handler, error) {
	slog.Info("Starting board edge server", "env", cfg.Env, "static_dir", cfg.StaticDir)
	slog.Info("Backend configured", "url", cfg.BackendURL, "api_prefix", cfg.APIPrefix)
	if cfg.UploadConfigured() {
		slog.Info("Upload proxy configured", "url", cfg.LambdaUploadURL)
	} else {
		slog.Warn("LAMBDA_UPLOAD_URL not set, /api/upload will answer 503")
	}

	upstream, err := transport.NewHTTPClient(transport.Options{
		Timeout:  cfg.UpstreamTimeout,
		AllProxy: cfg.UpstreamAllProxy,
	})
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}
	// Redirects from the backend belong to the browser
	upstream.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	h, err := handlers.NewHandler(ctx, cfg, upstream)
	if err != nil {
		return nil, err
	}

	compress, err := middleware.Compress()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	h.Register(mux)

	return middleware.Handler(mux,
		middleware.LogRequest,
		middleware.Recover(cfg.Development()),
		middleware.SecurityHeaders,
		compress,
		middleware.CORSWithConfig(cfg.CORSAllowedOrigins),
		middleware.LoginState(nil),
		middleware.IssueCSRFCookie(cfg.CSRFEnabled, !cfg.Development()),
	), nil
}

// Serve runs handler on ln until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
