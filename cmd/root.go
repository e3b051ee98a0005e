// ABOUTME: Root command for the board CLI
// ABOUTME: Handles global flags, logging setup and flag > env > default resolution

package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/session"
	"github.com/cozyrim/3-bella-han-comunity-frontend/logger"
)

var (
	apiURL     string
	uploadURL  string
	configDir  string
	allProxy   string
	csrfCookie string
	timeout    time.Duration
	jsonOutput bool
	debug      bool
)

const defaultAPIURL = "http://localhost:3000/api/v1"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "board",
	Short: "CLI for the community board",
	Long: `board is a command-line client for the community board.

It logs in, browses and writes posts and comments, uploads images and can
run the edge server that serves the web pages and proxies the API.

Environment Variables:
  BOARD_API_URL     API base URL (default: http://localhost:3000/api/v1)
  BOARD_UPLOAD_URL  Absolute image upload endpoint (default: <api>/files/upload)
  BOARD_CONFIG_DIR  Where the session is stored (default: ~/.config/board)
  BOARD_ALL_PROXY   ssh+socks5://user@host:port?private-key=/path jump host
  LOG_LEVEL         debug, info, warn or error (default: warn for the CLI)`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		if debug {
			level = "debug"
		}
		// stdout is reserved for command output
		logger.InitWriter(os.Stderr, level, os.Getenv("LOG_FORMAT"))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api-url", "", "API base URL (overrides BOARD_API_URL)")
	flags.StringVar(&uploadURL, "upload-url", "", "Absolute upload endpoint (overrides BOARD_UPLOAD_URL)")
	flags.StringVar(&configDir, "config-dir", "", "Session directory (overrides BOARD_CONFIG_DIR)")
	flags.StringVar(&allProxy, "all-proxy", "", "SSH SOCKS5 jump host (overrides BOARD_ALL_PROXY)")
	flags.StringVar(&csrfCookie, "csrf-cookie", "", "Cookie echoed as X-XSRF-TOKEN on writes (e.g. XSRF-TOKEN)")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout")
	flags.BoolVar(&jsonOutput, "json", false, "Output the JSON result envelope instead of human-readable text")
	flags.BoolVar(&debug, "debug", false, "Log every request to stderr")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	return firstNonEmpty(apiURL, os.Getenv("BOARD_API_URL"), defaultAPIURL)
}

// GetUploadURL returns the upload endpoint; empty means the API's own.
func GetUploadURL() string {
	return firstNonEmpty(uploadURL, os.Getenv("BOARD_UPLOAD_URL"))
}

// GetConfigDir returns where the session file lives.
func GetConfigDir() string {
	return firstNonEmpty(configDir, os.Getenv("BOARD_CONFIG_DIR"), session.DefaultConfigDir())
}

// GetAllProxy returns the optional SOCKS5 jump host.
func GetAllProxy() string {
	return firstNonEmpty(allProxy, os.Getenv("BOARD_ALL_PROXY"))
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
