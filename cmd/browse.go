// ABOUTME: Browse command for the board CLI
// ABOUTME: Opens the full-screen feed browser; logs go to the config directory meanwhile

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/debuglog"
)

var browseSize int

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the feed interactively",
	Long: `Browse the feed in a full-screen view.

Keys: ↑/↓ move, enter opens a post, n loads the next page, l toggles your
like, r reloads, q quits.`,
	Run: runE(runBrowse),
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().IntVar(&browseSize, "size", client.DefaultPageSize, "Posts per page")
}

func runBrowse(ctx context.Context, w io.Writer, _ []string) int {
	if !interactive() {
		fmt.Fprintln(w, "Error: browse needs a terminal; use `board posts list` instead")
		return exitError
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	restore, err := debuglog.Redirect(GetConfigDir(), level)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer restore()

	// The auth hint would draw over the full-screen view; the status line shows it instead
	prevStderr := stderr
	stderr = io.Discard
	defer func() { stderr = prevStderr }()

	return withApp(w, func(a *app) int {
		if err := tui.Run(ctx, a.client.Posts, a.client.Comments, browseSize); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	})
}
