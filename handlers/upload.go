// ABOUTME: Upload proxy that forwards multipart image uploads to the Lambda endpoint
// ABOUTME: Avoids browser CORS issues by keeping uploads same-origin

package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/cozyrim/3-bella-han-comunity-frontend/middleware"
)

// multipartSlack allows for boundaries and part headers on top of the file.
const multipartSlack = 64 << 10

// Upload handles POST /api/upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploadURL == nil {
		middleware.WriteJSONError(w, http.StatusServiceUnavailable, "Upload service is not configured.", middleware.CodeUnavailable)
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Expected a multipart/form-data upload.", middleware.CodeBadMultipart)
		return
	}

	limit := h.cfg.MaxUploadBytes + multipartSlack
	if r.ContentLength > limit {
		h.writeTooLarge(w)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeTooLarge(w)
			return
		}
		middleware.WriteJSONError(w, http.StatusBadRequest, "Failed to read upload.", middleware.CodeBadMultipart)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.UpstreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.uploadURL.String(), bytes.NewReader(body))
	if err != nil {
		slog.Error("Upload proxy: failed to create request", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal error", middleware.CodeInternal)
		return
	}
	req.Header.Set("Content-Type", r.Header.Get("Content-Type"))
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	if auth := r.Header.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if id := middleware.RequestID(r); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := h.upstream.Do(req)
	if err != nil {
		slog.Warn("Upload proxy: request failed", "request_id", middleware.RequestID(r), "error", err)
		middleware.WriteJSONError(w, http.StatusBadGateway, msgUpstreamFailed, middleware.CodeBadGateway)
		return
	}
	defer resp.Body.Close()

	slog.Info("Upload proxied", "request_id", middleware.RequestID(r), "bytes", len(body), "status", resp.StatusCode)

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Debug("Upload proxy: response copy failed", "request_id", middleware.RequestID(r), "error", err)
	}
}

func (h *Handler) writeTooLarge(w http.ResponseWriter) {
	middleware.WriteJSONError(w, http.StatusRequestEntityTooLarge,
		"Image must be 10MB or smaller.", middleware.CodeTooLarge)
}
