// ABOUTME: Tests for the health command
// ABOUTME: Verifies health check output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cozyrim/3-bella-han-comunity-frontend/handlers"
)

func TestHealthURL(t *testing.T) {
	got, err := healthURL("https://board.example.com/api/v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://board.example.com/healthz" {
		t.Errorf("expected origin plus /healthz, got %s", got)
	}

	if _, err := healthURL("not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestFormatHealthHuman(t *testing.T) {
	resp := &handlers.HealthResponse{
		Status:        "ok",
		Backend:       handlers.BackendStatus{Reachable: true, Status: http.StatusOK},
		UploadProxy:   true,
		UptimeSeconds: 42,
	}

	output := formatHealthHuman("http://localhost:3000/healthz", resp)

	for _, want := range []string{"http://localhost:3000/healthz", "reachable", "HTTP 200", "configured", "42s"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q:\n%s", want, output)
		}
	}
}

func TestFormatHealthHuman_BackendDown(t *testing.T) {
	resp := &handlers.HealthResponse{
		Status:  "degraded",
		Backend: handlers.BackendStatus{Error: "connection refused"},
	}

	output := formatHealthHuman("http://localhost:3000/healthz", resp)

	if !strings.Contains(output, "unreachable") || !strings.Contains(output, "connection refused") {
		t.Errorf("expected unreachable backend with reason, got:\n%s", output)
	}
	if !strings.Contains(output, "not configured") {
		t.Errorf("expected upload proxy not configured, got:\n%s", output)
	}
}

func TestFormatHealthJSON(t *testing.T) {
	resp := &handlers.HealthResponse{Status: "ok", Backend: handlers.BackendStatus{Reachable: true}}

	output := formatHealthJSON("http://localhost:3000/healthz", resp)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["server"] != "http://localhost:3000/healthz" {
		t.Errorf("expected server URL in JSON, got %v", parsed["server"])
	}
	health, ok := parsed["health"].(map[string]any)
	if !ok || health["status"] != "ok" {
		t.Errorf("expected nested health status, got %v", parsed["health"])
	}
}

func healthServer(t *testing.T, resp handlers.HealthResponse) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHealthCommand_Success(t *testing.T) {
	server := healthServer(t, handlers.HealthResponse{
		Status:  "ok",
		Backend: handlers.BackendStatus{Reachable: true, Status: http.StatusOK},
	})
	apiURL = server.URL + "/api/v1"
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf, nil)

	if exitCode != exitOK {
		t.Errorf("expected exit code %d, got %d: %s", exitOK, exitCode, buf.String())
	}
}

func TestHealthCommand_BackendUnreachable(t *testing.T) {
	server := healthServer(t, handlers.HealthResponse{
		Status:  "degraded",
		Backend: handlers.BackendStatus{Error: "dial tcp: connection refused"},
	})
	apiURL = server.URL + "/api/v1"
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf, nil)

	if exitCode != exitFailed {
		t.Errorf("expected exit code %d, got %d", exitFailed, exitCode)
	}
}

func TestHealthCommand_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	apiURL = server.URL + "/api/v1"
	server.Close()
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf, nil)

	if exitCode != exitError {
		t.Errorf("expected exit code %d, got %d", exitError, exitCode)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("expected error message, got %q", buf.String())
	}
}

func TestHealthCommand_JSONOutput(t *testing.T) {
	server := healthServer(t, handlers.HealthResponse{Status: "ok", Backend: handlers.BackendStatus{Reachable: true}})
	apiURL = server.URL + "/api/v1"
	jsonOutput = true
	defer func() {
		apiURL = ""
		jsonOutput = false
	}()

	var buf bytes.Buffer
	runHealth(context.Background(), &buf, nil)

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
}
