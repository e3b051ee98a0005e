// ABOUTME: Health endpoint reporting edge server and backend reachability
// ABOUTME: Backend probes are cached briefly so health checks stay cheap

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// BackendStatus is the cached outcome of a backend probe.
type BackendStatus struct {
	Reachable bool      `json:"reachable"`
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string        `json:"status"` // ok or degraded
	Backend       BackendStatus `json:"backend"`
	UploadProxy   bool          `json:"upload_proxy"`
	UptimeSeconds int64         `json:"uptime_seconds"`
}

// Health returns server status and whether the backend answers at all.
// Any HTTP response counts as reachable; only transport failures do not.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	backend := h.probeBackend(r.Context())

	status := "ok"
	if !backend.Reachable {
		status = "degraded"
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Backend:       backend,
		UploadProxy:   h.uploadURL != nil,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

func (h *Handler) probeBackend(ctx context.Context) BackendStatus {
	if cached, ok := h.health.Get("backend"); ok {
		return cached
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st := BackendStatus{CheckedAt: time.Now()}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.cfg.BackendURL+h.cfg.APIPrefix+"/posts", nil)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	resp, err := h.upstream.Do(req)
	if err != nil {
		slog.Warn("Backend probe failed", "error", err)
		st.Error = err.Error()
	} else {
		resp.Body.Close()
		st.Reachable = true
		st.Status = resp.StatusCode
	}

	h.health.Set("backend", st)
	return st
}
