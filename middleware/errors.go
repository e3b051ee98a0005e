// ABOUTME: JSON error response helper for middleware
// ABOUTME: Emits the backend's {message, code} shape so API clients parse it uniformly

package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes written by the edge server itself.
const (
	CodeRateLimited  = "RATE_LIMITED"
	CodeCSRF         = "CSRF_INVALID"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadGateway   = "BAD_GATEWAY"
	CodeNotFound     = "NOT_FOUND"
	CodeMethod       = "METHOD_NOT_ALLOWED"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeBadMultipart = "INVALID_MULTIPART"
)

// WriteJSONError writes an error response as JSON with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}{
		Message: message,
		Code:    code,
	})
}
