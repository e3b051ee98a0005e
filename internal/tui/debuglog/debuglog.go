// ABOUTME: File-backed slog logger for full-screen TUI sessions
// ABOUTME: Keeps log output off the terminal while the feed browser owns it

package debuglog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file created under the config directory.
const FileName = "debug.log"

// Open appends JSON log lines to configDir/debug.log. With an empty
// configDir logging is discarded. Callers must Close the returned closer.
func Open(configDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if configDir == "" {
		return discard(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(configDir, FileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), f, nil
}

// Redirect points the default slog logger at configDir/debug.log and
// returns a restore func that closes the file and reinstates the
// previous default.
func Redirect(configDir string, level slog.Level) (func(), error) {
	logger, closer, err := Open(configDir, level)
	if err != nil {
		return nil, err
	}
	prev := slog.Default()
	slog.SetDefault(logger)
	return func() {
		slog.SetDefault(prev)
		closer.Close()
	}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
