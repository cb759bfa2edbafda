package logging

import (
	"log/slog"
	"testing"

	"github.com/towlerj/govee-api/internal/infrastructure/config"
)

func TestNew_TextFormat(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "debug",
		Format: "text",
		Output: "stderr",
	}

	logger := New(cfg, "1.0.0")

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	logger := New(cfg, "1.0.0")

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewHandler_FormatSelection(t *testing.T) {
	if _, ok := newHandler(config.LoggingConfig{Format: "json"}).(*slog.JSONHandler); !ok {
		t.Error("format json should select the JSON handler")
	}
	if _, ok := newHandler(config.LoggingConfig{Format: "JSON"}).(*slog.JSONHandler); !ok {
		t.Error("format matching is case-insensitive")
	}
	if _, ok := newHandler(config.LoggingConfig{Format: "text"}).(*slog.TextHandler); !ok {
		t.Error("format text should select the text handler")
	}
	if _, ok := newHandler(config.LoggingConfig{}).(*slog.TextHandler); !ok {
		t.Error("unset format should fall back to text")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{
			name:     "debug level",
			input:    "debug",
			expected: slog.LevelDebug,
		},
		{
			name:     "info level",
			input:    "info",
			expected: slog.LevelInfo,
		},
		{
			name:     "warn level",
			input:    "warn",
			expected: slog.LevelWarn,
		},
		{
			name:     "warning alias",
			input:    "warning",
			expected: slog.LevelWarn,
		},
		{
			name:     "error level",
			input:    "error",
			expected: slog.LevelError,
		},
		{
			name:     "mixed case",
			input:    "DEBUG",
			expected: slog.LevelDebug,
		},
		{
			name:     "unknown defaults to info",
			input:    "verbose",
			expected: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	logger := Default()

	child := logger.With("component", "session")
	if child == nil {
		t.Fatal("expected non-nil child logger")
	}
	if child == logger {
		t.Error("With() should return a new logger")
	}
}
