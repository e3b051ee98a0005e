// ABOUTME: Reverse proxy from the API prefix to the board backend
// ABOUTME: Preserves path, query, cookies and Set-Cookie; upstream failures become 502 JSON

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/cozyrim/3-bella-han-comunity-frontend/middleware"
)

// Message returned when the backend cannot be reached; matches the
// message API clients show for transport failures.
const msgUpstreamFailed = "Failed to communicate with the server."

func newAPIProxy(target *url.URL, transport http.RoundTripper) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if id := middleware.RequestID(pr.In); id != "" {
				pr.Out.Header.Set("X-Request-ID", id)
			}
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if errors.Is(err, context.Canceled) {
				// Client went away; nobody is left to read a response
				return
			}
			slog.Warn("Upstream API request failed",
				"request_id", middleware.RequestID(r),
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			middleware.WriteJSONError(w, http.StatusBadGateway, msgUpstreamFailed, middleware.CodeBadGateway)
		},
	}
}

// ProxyAPI forwards API_PREFIX/* to the backend, bounded by UPSTREAM_TIMEOUT.
func (h *Handler) ProxyAPI(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.UpstreamTimeout)
	defer cancel()
	h.apiProxy.ServeHTTP(w, r.WithContext(ctx))
}
