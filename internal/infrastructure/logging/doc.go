// Package logging provides structured logging for goveectl.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the CLI.
//
// # Features
//
//   - Text output for interactive use (human-readable)
//   - JSON output for machine parsing
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("logged in", "devices", 4)
//	logger.Error("broker connection failed", "error", err)
//
// # Security
//
// Never log account passwords, session tokens, or certificate material.
package logging
