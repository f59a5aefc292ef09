// Package logging configures the process-wide slog logger: JSON output
// to stderr, optionally teed into a size-rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options controls logger construction.
type Options struct {
	Level    string // debug, info, warn, error
	FilePath string // empty disables file output
	MaxSize  int64  // bytes before the log file rotates
	Backups  int    // rotated files kept
}

// DefaultOptions returns the defaults: info level, console only, 100 MB
// rotation with 5 backups when a file is configured.
func DefaultOptions() Options {
	return Options{
		Level:   "info",
		MaxSize: 100 << 20,
		Backups: 5,
	}
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a logger per opts and installs it as the slog default.
// The report itself goes to stdout in some modes, so logs go to stderr.
func Setup(opts Options) error {
	writer := io.Writer(os.Stderr)

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0750); err != nil {
			return err
		}
		fw, err := newRotatingWriter(opts.FilePath, opts.MaxSize, opts.Backups)
		if err != nil {
			return err
		}
		writer = io.MultiWriter(os.Stderr, fw)
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	slog.SetDefault(slog.New(handler))
	return nil
}
