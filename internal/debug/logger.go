package debug

import (
	"io"
	"log/slog"
	"strings"
)

var (
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	enabled bool
)

// SetOutput sends the debug log to w.
// level may be "debug", "info", "warn", or "error" (default "debug").
func SetOutput(w io.Writer, level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelDebug
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	enabled = w != io.Discard
}

// Log writes a debug message with key/value attributes
func Log(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info writes an informational message
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn writes a warning
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	return enabled
}
