// ABOUTME: Per-invocation client wiring for CLI commands
// ABOUTME: Loads the saved session, builds the API client and saves state on exit

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/session"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/transport"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1 // request rejected or invalid input
	exitError  = 2 // connectivity, auth or local errors
)

// stderr receives hints that must not mix with --json output.
var stderr io.Writer = os.Stderr

// app is the state one command invocation works with.
type app struct {
	client  *client.Client
	session *session.Session
	jar     *session.Jar
	store   *session.Store
	baseURL string
}

// openApp restores the saved session for the current API URL and builds
// a client around it.
func openApp() (*app, error) {
	baseURL := GetAPIURL()
	a := &app{
		session: &session.Session{},
		jar:     session.NewJar(),
		store:   session.NewStore(GetConfigDir()),
		baseURL: baseURL,
	}

	if err := a.store.Load(baseURL, a.session, a.jar); err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	hc, err := transport.NewHTTPClient(transport.Options{
		Timeout:  timeout,
		AllProxy: GetAllProxy(),
		Jar:      a.jar,
	})
	if err != nil {
		return nil, fmt.Errorf("building HTTP client: %w", err)
	}

	a.client = client.New(client.Config{
		BaseURL:    baseURL,
		UploadURL:  GetUploadURL(),
		Session:    a.session,
		HTTPClient: hc,
		CSRFCookie: csrfCookie,
		OnAuthRequired: func(client.Result) {
			fmt.Fprintln(stderr, "login required, run `board login`")
		},
	})
	return a, nil
}

// save persists the session and cookies. Failures are logged, not fatal:
// the command itself already ran.
func (a *app) save() {
	if err := a.store.Save(a.baseURL, a.session, a.jar); err != nil {
		slog.Warn("Failed to save session", "error", err)
	}
}

// withApp opens the app, runs fn and saves the session afterwards.
func withApp(w io.Writer, fn func(a *app) int) int {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.save()
	return fn(a)
}

// runFunc is the shape every command body has.
type runFunc func(ctx context.Context, w io.Writer, args []string) int

// runE adapts a runFunc to cobra, cancelling on SIGINT/SIGTERM and
// exiting with the returned code.
func runE(fn runFunc) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		exitCode := fn(ctx, cmd.OutOrStdout(), args)
		cancel()
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}
}
