// ABOUTME: HTTP client for the community board REST API
// ABOUTME: Attaches bearer tokens and cookies, refreshes once on 401, normalizes results

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/session"
)

const (
	// DefaultRefreshTimeout bounds the shared /auth/refresh round trip.
	DefaultRefreshTimeout = 10 * time.Second

	csrfHeaderName  = "X-XSRF-TOKEN"
	requestIDHeader = "X-Request-ID"
)

// maxBodyBytes caps how much of a response body is read. A longer body
// fails the call instead of being parsed truncated.
var maxBodyBytes int64 = 16 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the API root every endpoint is appended to,
	// e.g. http://localhost:3000/api/v1.
	BaseURL string

	// UploadURL is an absolute upload endpoint (e.g. the edge server's
	// /api/upload Lambda proxy). Empty means BaseURL + "/files/upload".
	UploadURL string

	// Session holds the credential state. Nil creates an empty one.
	Session *session.Session

	// HTTPClient sends requests. A cookie jar is attached when it has none,
	// since cookies are always sent.
	HTTPClient *http.Client

	// Timeout bounds each attempt when the HTTPClient has none; 0 means 30s.
	Timeout time.Duration

	// RefreshTimeout bounds the refresh call; 0 means DefaultRefreshTimeout.
	RefreshTimeout time.Duration

	// CSRFCookie, when set, names a cookie whose value is echoed in the
	// X-XSRF-TOKEN header of mutating requests.
	CSRFCookie string

	// OnAuthRequired is called when a call that requires auth ends in 401.
	// Redirects, prompts and alerts belong here, not in the client.
	OnAuthRequired func(Result)
}

// Options describes one call.
type Options struct {
	Method string  // GET (default), POST, PUT, PATCH or DELETE
	Body   Payload // nil, JSON(...) or Multipart(...)

	// Public marks endpoints that do not require auth: no bearer header
	// is attached and a 401 never triggers a refresh.
	Public bool

	// bearerOnly attaches the bearer to a Public call. Its 401 still
	// never refreshes or clears the session.
	bearerOnly bool
}

// Client is the API client for the community board backend
type Client struct {
	baseURL        string
	uploadURL      string
	httpClient     *http.Client
	session        *session.Session
	refreshTimeout time.Duration
	csrfCookie     string
	onAuthRequired func(Result)
	refreshGroup   singleflight.Group

	Auth     *AuthAPI
	Users    *UserAPI
	Posts    *PostAPI
	Comments *CommentAPI
	Files    *FileAPI
}

// New creates a new API client.
func New(cfg Config) *Client {
	sess := cfg.Session
	if sess == nil {
		sess = &session.Session{}
	}

	var hc http.Client
	if cfg.HTTPClient != nil {
		hc = *cfg.HTTPClient
	}
	if hc.Timeout <= 0 {
		hc.Timeout = cfg.Timeout
		if hc.Timeout <= 0 {
			hc.Timeout = 30 * time.Second
		}
	}
	if hc.Jar == nil {
		hc.Jar, _ = cookiejar.New(nil)
	}

	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}

	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		uploadURL:      cfg.UploadURL,
		httpClient:     &hc,
		session:        sess,
		refreshTimeout: refreshTimeout,
		csrfCookie:     cfg.CSRFCookie,
		onAuthRequired: cfg.OnAuthRequired,
	}
	c.Auth = &AuthAPI{c: c}
	c.Users = &UserAPI{c: c}
	c.Posts = &PostAPI{c: c}
	c.Comments = &CommentAPI{c: c}
	c.Files = &FileAPI{c: c}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the credential state the client reads and writes.
func (c *Client) Session() *session.Session {
	return c.session
}

// Call performs one logical operation against a backend-relative endpoint.
// It never returns an error; every outcome is described by the Result.
func (c *Client) Call(ctx context.Context, endpoint string, opts Options) Result {
	if !strings.HasPrefix(endpoint, "/") {
		return invalidRequest(fmt.Sprintf("endpoint %q must begin with /", endpoint))
	}
	return c.call(ctx, c.baseURL+endpoint, endpoint, opts)
}

// exchange is one completed HTTP round trip.
type exchange struct {
	status int
	header http.Header
	body   json.RawMessage // nil for 204 or a non-JSON body

	truncated bool // body exceeded maxBodyBytes
}

// encodedRequest is everything needed to (re)send a request.
type encodedRequest struct {
	method      string
	target      string
	body        []byte
	contentType string
	requestID   string
}

func (c *Client) call(ctx context.Context, target, label string, opts Options) Result {
	method, ok := normalizeMethod(opts.Method)
	if !ok {
		return invalidRequest(fmt.Sprintf("unsupported method %q", opts.Method))
	}
	requiresAuth := !opts.Public

	req := encodedRequest{method: method, target: target, requestID: uuid.NewString()}
	if opts.Body != nil && method != http.MethodGet {
		body, ct, err := opts.Body.encode()
		if err != nil {
			return invalidRequest(err.Error())
		}
		req.body, req.contentType = body, ct
	}

	token := ""
	if requiresAuth || opts.bearerOnly {
		token = c.session.Token()
	}

	ex, err := c.send(ctx, req, token)
	if err != nil {
		return c.transportResult(ctx, label, err)
	}

	if ex.status == http.StatusUnauthorized && requiresAuth {
		slog.Debug("API unauthorized, refreshing token", "endpoint", label, "request_id", req.requestID)
		newToken, err := c.refreshToken(ctx)
		if err != nil {
			return c.transportResult(ctx, label, err)
		}
		if newToken != "" {
			ex, err = c.send(ctx, req, newToken)
			if err != nil {
				return c.transportResult(ctx, label, err)
			}
		} else {
			c.session.Clear()
		}
	}

	result := classify(ex.status, ex.body)
	if ex.truncated {
		slog.Warn("API response body too large",
			"endpoint", label,
			"status", ex.status,
			"limit_bytes", maxBodyBytes,
			"request_id", req.requestID,
		)
		result = oversizedBody(ex.status, maxBodyBytes)
	}
	if ex.status == http.StatusForbidden {
		slog.Warn("API access denied",
			"method", method,
			"endpoint", label,
			"has_token", c.session.Authenticated(),
			"request_id", req.requestID,
		)
	}
	if ex.status == http.StatusUnauthorized && requiresAuth && c.onAuthRequired != nil {
		c.onAuthRequired(result)
	}
	return result
}

// send performs a single attempt. Only transport failures return an error.
func (c *Client) send(ctx context.Context, er encodedRequest, token string) (*exchange, error) {
	var body io.Reader
	if er.body != nil {
		body = bytes.NewReader(er.body)
	}

	req, err := http.NewRequestWithContext(ctx, er.method, er.target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if er.contentType != "" {
		req.Header.Set("Content-Type", er.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, er.requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.csrfCookie != "" && isMutating(er.method) {
		if v := c.cookieValue(req.URL, c.csrfCookie); v != "" {
			req.Header.Set(csrfHeaderName, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	ex := &exchange{status: resp.StatusCode, header: resp.Header}
	if resp.StatusCode != http.StatusNoContent {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
		switch {
		case int64(len(raw)) > maxBodyBytes:
			ex.truncated = true
		case err == nil && json.Valid(raw):
			ex.body = raw
		}
	}

	slog.Debug("API response",
		"method", er.method,
		"url", er.target,
		"status", resp.StatusCode,
		"request_id", er.requestID,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return ex, nil
}

func (c *Client) cookieValue(u *url.URL, name string) string {
	if c.httpClient.Jar == nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// transportResult converts a failed round trip into a Result with a
// user-friendly error detail.
func (c *Client) transportResult(ctx context.Context, label string, err error) Result {
	detail := c.handleRequestError(ctx, err)
	slog.Debug("API transport failure", "endpoint", label, "error", detail)
	return transportFailure(detail)
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return "request timed out"
	}
	return fmt.Sprintf("cannot connect to backend at %s: %v", c.baseURL, err)
}

// sameOrigin reports whether target shares scheme and host with the API root.
func (c *Client) sameOrigin(target string) bool {
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	b, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return t.Host != "" && strings.EqualFold(t.Scheme, b.Scheme) && strings.EqualFold(t.Host, b.Host)
}

func normalizeMethod(m string) (string, bool) {
	if m == "" {
		return http.MethodGet, true
	}
	switch up := strings.ToUpper(m); up {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return up, true
	default:
		return "", false
	}
}

func isMutating(method string) bool {
	return method != http.MethodGet && method != http.MethodHead && method != http.MethodOptions
}
