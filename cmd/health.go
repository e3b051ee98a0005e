// ABOUTME: Health command for the board CLI
// ABOUTME: Checks the edge server's /healthz and whether it can reach the backend

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/handlers"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/transport"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/styles"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check edge server and backend connectivity",
	Long: `Check the edge server serving --api-url and whether it can reach the backend.

Exit codes:
  0 - Server and backend reachable
  1 - Server up, backend unreachable
  2 - Server unreachable`,
	Run: runE(runHealth),
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// healthURL returns <scheme>://<host>/healthz for the API URL.
func healthURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid API URL %q", apiURL)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/healthz"}).String(), nil
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer, _ []string) int {
	target, err := healthURL(GetAPIURL())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	resp, err := fetchHealth(ctx, target)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(target, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(target, resp))
	}

	if !resp.Backend.Reachable {
		return exitFailed
	}
	return exitOK
}

func fetchHealth(ctx context.Context, target string) (*handlers.HealthResponse, error) {
	hc, err := transport.NewHTTPClient(transport.Options{Timeout: timeout, AllProxy: GetAllProxy()})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check returned HTTP %d", resp.StatusCode)
	}
	var out handlers.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}
	return &out, nil
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(target string, resp *handlers.HealthResponse) string {
	backend := styles.Success.Render("reachable")
	if resp.Backend.Reachable {
		backend += fmt.Sprintf(" (HTTP %d)", resp.Backend.Status)
	} else {
		backend = styles.Failure.Render("unreachable")
		if resp.Backend.Error != "" {
			backend += " " + resp.Backend.Error
		}
	}
	upload := "not configured"
	if resp.UploadProxy {
		upload = "configured"
	}
	return fmt.Sprintf(`Server:       %s
Status:       %s
Backend:      %s
Upload proxy: %s
Uptime:       %ds`, target, resp.Status, backend, upload, resp.UptimeSeconds)
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(target string, resp *handlers.HealthResponse) string {
	output := map[string]any{
		"server": target,
		"health": resp,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
