// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs every cache decision.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs reloads, startup and shutdown.
	LevelInfo LogLevel = "info"

	// LevelWarn logs fallbacks, retries and ignored option values.
	LevelWarn LogLevel = "warn"

	// LevelError logs failures only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger. Unknown levels fall back to info.
func Setup(cfg Config) zerolog.Logger {
	level, err := ParseLevel(string(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a configured level name. An empty name is info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithRequest adds the request fields listed below to logger.
func WithRequest(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	ctx := logger.With().
		Str("method", r.Method).
		Str("path", r.URL.Path)
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = ctx.Str("remote_ip", host)
	}
	return ctx.Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Every resolved decision (post type, post id, source, max-age)
//   - Joined in-flight option reloads
//
// Info: Normal operation events
//   - Options activated (origin, developer mode)
//   - Empty option store (defaults in use)
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Option load retries
//   - Serving last known good options
//   - Option values ignored as malformed
//   - Failed manual reloads
//
// Error: Error conditions requiring attention
//   - Option reload failed after retries
//   - Origin unreachable (502)
//
// Context Fields:
//   - component: resolver, options, proxy, cc-proxy
//   - method, path, remote_ip: request being proxied
//   - status_code: origin HTTP status code
//   - decision: resolved Cache-Control decision
//   - source: winning settings category
//   - store, origin: option store and snapshot origin
//   - error_class: origin failure class (timeout, canceled, network)
