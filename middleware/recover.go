// ABOUTME: Panic recovery middleware
// ABOUTME: Turns a handler panic into a 500, with details only in development

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover returns middleware that converts panics into 500 responses.
func Recover(showDetails bool) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("Handler panic",
					"request_id", RequestID(r),
					"path", sanitizePath(r.URL.Path),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				msg := "Internal server error"
				if showDetails {
					msg = fmt.Sprintf("Internal server error: %v", rec)
				}
				WriteJSONError(w, http.StatusInternalServerError, msg, CodeInternal)
			}()
			next(w, r)
		}
	}
}
