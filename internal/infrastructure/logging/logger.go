package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/towlerj/govee-api/internal/infrastructure/config"
)

// serviceName tags every log entry produced by this process.
const serviceName = "goveectl"

// Logger is a thin wrapper around slog.Logger carrying the CLI's default
// fields (service, version). Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging section of the CLI configuration.
// The format selects between human-readable text (the default, this is an
// interactive tool) and JSON for log collectors; output may be stdout or
// stderr.
func New(cfg config.LoggingConfig, version string) *Logger {
	handler := newHandler(cfg).WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// newHandler picks the slog handler for the configured format, level and
// destination.
func newHandler(cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	out := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}

// parseLevel maps a configured level string onto slog's levels. An
// unrecognised value falls back to info rather than erroring; a typo in
// the config file should not silence the process.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a child logger with additional default attributes,
// typically a component tag:
//
//	sessionLog := log.With("component", "session")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default returns a text logger at info level on stdout, for use during
// startup before the configuration file has been read.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stdout",
	}, "dev")
}
