// ABOUTME: Configuration loader for the board edge server
// ABOUTME: Loads .env then environment variables with defaults

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	Env                string   // development or production (NODE_ENV / APP_ENV)
	StaticDir          string   // served as-is, pages under StaticDir/pages
	CORSAllowedOrigins []string // allowed CORS origins (empty = same-origin only)
	CSRFEnabled        bool     // double-submit check on the upload proxy
	MaxUploadBytes     int64

	// Upstream REST API
	BackendURL       string        // origin the API prefix is proxied to
	APIPrefix        string        // path prefix forwarded verbatim, e.g. /api/v1
	PublicAPIBaseURL string        // API base the browser is told to use
	UpstreamTimeout  time.Duration // per-request bound for proxied calls
	UpstreamAllProxy string        // optional ssh+socks5 jump host

	// Browser runtime config
	StaticURL       string
	LambdaUploadURL string

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitAuth    int  // Requests per minute for login/refresh (default: 5)
	RateLimitUpload  int  // Requests per minute for uploads (default: 10)
	RateLimitDefault int  // Requests per minute for all other API calls (default: 100)
}

// Development reports whether error details may be shown to clients.
func (c *Config) Development() bool {
	return c.Env != "production"
}

// UploadConfigured returns true if the upload proxy has a target.
func (c *Config) UploadConfigured() bool {
	return c.LambdaUploadURL != ""
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	apiPrefix := "/" + strings.Trim(getEnv("API_PREFIX", "/api/v1"), "/")

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		Env:                getEnv("NODE_ENV", getEnv("APP_ENV", "development")),
		StaticDir:          getEnv("STATIC_DIR", "public"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		CSRFEnabled:        getEnvBool("CSRF_ENABLED", false),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		BackendURL:       strings.TrimRight(ensureScheme(os.Getenv("BACKEND_URL")), "/"),
		APIPrefix:        apiPrefix,
		PublicAPIBaseURL: getEnv("PUBLIC_API_BASE_URL", apiPrefix),
		UpstreamTimeout:  getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		UpstreamAllProxy: os.Getenv("UPSTREAM_ALL_PROXY"),

		StaticURL:       os.Getenv("STATIC_URL"),
		LambdaUploadURL: os.Getenv("LAMBDA_UPLOAD_URL"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		RateLimitUpload:  getEnvInt("RATE_LIMIT_UPLOAD", 10),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),
	}

	// Validate required fields
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if u, err := url.Parse(cfg.BackendURL); err != nil || u.Host == "" {
		return nil, fmt.Errorf("BACKEND_URL is not a valid URL: %q", cfg.BackendURL)
	}
	if cfg.LambdaUploadURL != "" {
		if u, err := url.Parse(cfg.LambdaUploadURL); err != nil || u.Host == "" {
			return nil, fmt.Errorf("LAMBDA_UPLOAD_URL is not a valid URL: %q", cfg.LambdaUploadURL)
		}
	}

	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.MaxUploadBytes < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", cfg.RateLimitAuth},
		{"RATE_LIMIT_UPLOAD", cfg.RateLimitUpload},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
