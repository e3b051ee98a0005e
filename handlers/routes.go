// ABOUTME: Declarative route table for the edge server
// ABOUTME: Each route carries its own middleware (rate limits, CSRF)

package handlers

import (
	"net/http"
	"strings"

	"github.com/cozyrim/3-bella-han-comunity-frontend/middleware"
)

// Route is a method and path with its handler and route-specific middleware.
// An empty Method matches every method.
type Route struct {
	Method     string
	Path       string
	Handler    http.HandlerFunc
	Middleware []middleware.Middleware
}

// Pattern returns the ServeMux pattern for the route.
func (rt Route) Pattern() string {
	if rt.Method == "" {
		return rt.Path
	}
	return rt.Method + " " + rt.Path
}

// pages maps page routes to files under STATIC_DIR/pages.
var pages = []struct {
	path, file string
	guestOnly  bool // redirect to / when already logged in
}{
	{"/login", "login.html", true},
	{"/signup", "signup.html", true},
	{"/profile", "profile.html", false},
	{"/change-password", "change-password.html", false},
	{"/create-post", "create-post.html", false},
	{"/post-detail", "post-detail.html", false},
	{"/edit-post", "edit-post.html", false},
}

// Routes returns every route for registration.
func (h *Handler) Routes() []Route {
	routes := []Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: h.Health},
		{Method: http.MethodGet, Path: "/env.js", Handler: h.EnvJS},
		{Method: http.MethodGet, Path: "/{$}", Handler: h.page("index.html", false)},
		{
			Method:  http.MethodPost,
			Path:    "/api/upload",
			Handler: h.Upload,
			Middleware: []middleware.Middleware{
				middleware.RateLimit(h.uploadLimiter, middleware.SessionOrIP),
				middleware.CSRF(h.cfg.CSRFEnabled),
			},
		},
		{
			Path:       strings.TrimSuffix(h.cfg.APIPrefix, "/") + "/",
			Handler:    h.ProxyAPI,
			Middleware: []middleware.Middleware{h.apiRateLimit},
		},
		// Everything else is a static asset or a 404
		{Path: "/", Handler: h.Static},
	}

	for _, p := range pages {
		routes = append(routes, Route{Method: http.MethodGet, Path: p.path, Handler: h.page(p.file, p.guestOnly)})
	}
	return routes
}

// Register adds all routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	for _, rt := range h.Routes() {
		mux.HandleFunc(rt.Pattern(), middleware.Chain(rt.Handler, rt.Middleware...))
	}
}

// apiRateLimit applies the strict limit to login and refresh and the
// default limit to every other proxied call.
func (h *Handler) apiRateLimit(next http.HandlerFunc) http.HandlerFunc {
	strict := middleware.RateLimit(h.authLimiter, middleware.ClientIP)(next)
	relaxed := middleware.RateLimit(h.defaultLimiter, middleware.SessionOrIP)(next)

	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, h.cfg.APIPrefix)
		if rest == "/auth/login" || rest == "/auth/refresh" {
			strict(w, r)
			return
		}
		relaxed(w, r)
	}
}
