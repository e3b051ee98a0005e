// ABOUTME: Page routes, static assets and browser runtime config
// ABOUTME: Signed-in users are redirected away from login and signup

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/cozyrim/3-bella-han-comunity-frontend/middleware"
)

// page serves one HTML page from STATIC_DIR/pages.
func (h *Handler) page(file string, guestOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if guestOnly && middleware.IsLoggedIn(r) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		p := h.pagePath(file)
		if _, err := os.Stat(p); err != nil {
			h.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, p)
	}
}

// Static serves files under STATIC_DIR. Directories and missing files
// get the 404 page; listings are never shown.
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		middleware.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed", middleware.CodeMethod)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if strings.HasPrefix(clean, "/pages/") {
		h.NotFound(w, r)
		return
	}
	f, err := http.Dir(h.cfg.StaticDir).Open(clean)
	if err != nil {
		h.NotFound(w, r)
		return
	}
	info, err := f.Stat()
	f.Close()
	if err != nil || info.IsDir() {
		h.NotFound(w, r)
		return
	}

	h.static.ServeHTTP(w, r)
}

// browserEnv is what page scripts read from window.__ENV__.
type browserEnv struct {
	APIBaseURL      string `json:"API_BASE_URL"`
	StaticURL       string `json:"STATIC_URL"`
	LambdaUploadURL string `json:"LAMBDA_UPLOAD_URL"`
}

// EnvJS serves the runtime configuration script.
func (h *Handler) EnvJS(w http.ResponseWriter, r *http.Request) {
	uploadURL := ""
	if h.uploadURL != nil {
		// Pages always upload through the same-origin proxy
		uploadURL = "/api/upload"
	}
	env, err := json.Marshal(browserEnv{
		APIBaseURL:      h.cfg.PublicAPIBaseURL,
		StaticURL:       h.cfg.StaticURL,
		LambdaUploadURL: uploadURL,
	})
	if err != nil {
		http.Error(w, "failed to encode env", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, "window.__ENV__ = %s;\n", env)
}
