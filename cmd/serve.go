// ABOUTME: Serve command running the board edge server
// ABOUTME: Serves pages and static assets and proxies the API and uploads to their upstreams

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/config"
	"github.com/cozyrim/3-bella-han-comunity-frontend/logger"
	"github.com/cozyrim/3-bella-han-comunity-frontend/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the edge server",
	Long: `Run the edge server: web pages, static assets, /env.js, /healthz,
a reverse proxy from API_PREFIX to BACKEND_URL and the /api/upload proxy.

Configuration comes from the environment (and .env):
  PORT, BACKEND_URL (required), API_PREFIX, PUBLIC_API_BASE_URL, STATIC_DIR,
  STATIC_URL, LAMBDA_UPLOAD_URL, UPSTREAM_TIMEOUT, UPSTREAM_ALL_PROXY,
  CORS_ALLOWED_ORIGINS, CSRF_ENABLED, RATE_LIMIT_*, MAX_UPLOAD_BYTES, NODE_ENV`,
	Run: runE(runServe),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, w io.Writer, _ []string) int {
	// The server logs at info by default, unlike the other commands
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return exitError
	}

	handler, err := server.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		return exitError
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		slog.Error("Failed to listen", "port", cfg.Port, "error", err)
		return exitError
	}

	if err := server.Serve(ctx, ln, handler); err != nil {
		slog.Error("Server failed", "error", err)
		return exitError
	}
	fmt.Fprintln(w, "Server stopped")
	return exitOK
}
