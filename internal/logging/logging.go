// Package logging sets up the zerolog logger used across a run.
//
// Output goes to stderr so it never mixes with generated data on stdout.
// LOG_LEVEL and LOG_FORMAT (console|json) seed the default logger; the
// command line can override both through Configure.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var defaultLogger = New(os.Stderr, envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", FormatConsole))

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
}

// New builds a logger writing to w. Unknown levels fall back to info and
// unknown formats to console.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if strings.ToLower(format) != FormatJSON {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.DateTime,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Configure validates level and format, then installs a new default logger on w.
func Configure(w io.Writer, level, format string) error {
	if _, err := ParseLevel(level); err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: must be %s or %s", format, FormatConsole, FormatJSON)
	}
	SetDefault(New(w, level, format))
	return nil
}

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

type contextKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached to ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
