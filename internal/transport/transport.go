// ABOUTME: HTTP client construction shared by the CLI client and the edge server
// ABOUTME: Applies timeouts and an optional ssh+socks5 jump-host proxy

package transport

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Options configures NewHTTPClient.
type Options struct {
	Timeout  time.Duration  // whole-request timeout; 0 means DefaultTimeout
	AllProxy string         // ssh+socks5://user@host:port?private-key=/path
	Jar      http.CookieJar // optional cookie jar
}

// NewHTTPClient builds an http.Client. When AllProxy is set every
// connection is tunnelled through an SSH SOCKS5 proxy.
func NewHTTPClient(opts Options) (*http.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if opts.AllProxy != "" {
		dial, err := SOCKS5DialContext(opts.AllProxy)
		if err != nil {
			return nil, err
		}
		tr.Proxy = nil
		tr.DialContext = dial
		slog.Debug("Transport using SOCKS5 proxy", "proxy", redact(opts.AllProxy))
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
		Jar:       opts.Jar,
	}, nil
}

// SOCKS5DialContext creates a dial function for SSH+SOCKS5 proxy connections.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
// The SSH connection is established lazily on first dial.
func SOCKS5DialContext(allProxy string) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(allProxy, "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("unsupported proxy scheme %q (want ssh+socks5)", proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("proxy URL is missing a host")
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, fmt.Errorf("proxy URL missing required 'private-key' query param")
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		d := dialer
		mut.RUnlock()

		if d != nil {
			return d(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}, nil
}

// redact drops the query string (key path) from a proxy URL for logging.
func redact(allProxy string) string {
	if i := strings.IndexByte(allProxy, '?'); i >= 0 {
		return allProxy[:i]
	}
	return allProxy
}
