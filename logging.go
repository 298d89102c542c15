package darksim

import (
	"context"
	"log/slog"
)

// Logger defines the logging interface for the simulator.
// It is designed to be compatible with standard logging libraries
// such as slog, zap, and zerolog.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	// Used for per-message routing traces; very verbose on large overlays.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message with optional key-value pairs.
	// Used for run-level events like overlay construction and run completion.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	// Used for recoverable conditions like exhausted key allocation.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
}

// NopLogger is a no-op logger implementation that discards all log messages.
// It is the default logger when no logger is configured.
type NopLogger struct{}

// Ensure NopLogger implements Logger.
var _ Logger = NopLogger{}

// Debug implements Logger.Debug (no-op).
func (NopLogger) Debug(msg string, keysAndValues ...any) {}

// Info implements Logger.Info (no-op).
func (NopLogger) Info(msg string, keysAndValues ...any) {}

// Warn implements Logger.Warn (no-op).
func (NopLogger) Warn(msg string, keysAndValues ...any) {}

// Error implements Logger.Error (no-op).
func (NopLogger) Error(msg string, keysAndValues ...any) {}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

// Ensure SlogLogger implements Logger.
var _ Logger = SlogLogger{}

// Debug implements Logger.Debug.
func (s SlogLogger) Debug(msg string, keysAndValues ...any) {
	s.L.Log(context.Background(), slog.LevelDebug, msg, keysAndValues...)
}

// Info implements Logger.Info.
func (s SlogLogger) Info(msg string, keysAndValues ...any) {
	s.L.Log(context.Background(), slog.LevelInfo, msg, keysAndValues...)
}

// Warn implements Logger.Warn.
func (s SlogLogger) Warn(msg string, keysAndValues ...any) {
	s.L.Log(context.Background(), slog.LevelWarn, msg, keysAndValues...)
}

// Error implements Logger.Error.
func (s SlogLogger) Error(msg string, keysAndValues ...any) {
	s.L.Log(context.Background(), slog.LevelError, msg, keysAndValues...)
}
