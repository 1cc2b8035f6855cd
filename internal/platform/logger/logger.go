package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/lmsgate/internal/config"
)

// LevelCritical sits above slog.LevelError and marks faults that escaped a handler.
const LevelCritical = slog.Level(12)

// nopCloser is returned when the sink is a standard stream that must stay open.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel converts a configured level name into a slog.Level.
// Unknown names yield slog.LevelInfo and false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "critical":
		return LevelCritical, true
	default:
		return slog.LevelInfo, false
	}
}

// replaceLevel renders LevelCritical as "CRITICAL" instead of slog's "ERROR+4".
func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

// New creates a JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}))
}

// OpenSink opens path for appending, creating it when needed. If the file
// cannot be opened the sink falls back to stderr and the returned error
// explains why; the caller is expected to log it and carry on.
func OpenSink(path string) (io.WriteCloser, error) {
	if path == "" {
		return struct {
			io.Writer
			io.Closer
		}{os.Stdout, nopCloser{}}, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return struct {
			io.Writer
			io.Closer
		}{os.Stderr, nopCloser{}}, fmt.Errorf("log file %s is not writable: %w", path, err)
	}
	return f, nil
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger with the
// appropriate log level, points it at the configured sink, and sets it as the
// default logger for the application.
//
// The returned closer releases the log file and must be called on shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	level, ok := ParseLevel(cfg.LogLevel)

	sink, sinkErr := OpenSink(cfg.LogFile)
	logger := New(sink, level)
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	// An unwritable log file is recoverable: keep logging to stderr.
	if sinkErr != nil {
		logger.Warn("falling back to stderr for logging", "error", sinkErr)
	}

	return logger, sink, nil
}

// Critical logs msg at LevelCritical.
func Critical(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	logger.Log(ctx, LevelCritical, msg, args...)
}
