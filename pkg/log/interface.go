// Package log provides the structured logging interface used across gradkit.
//
// The Logger interface is slog-shaped; the default implementation is backed by
// zerolog and writes JSON lines. Solvers and kernel models obtain a logger with
// GetLoggerWithName and attach the attribute keys defined in attributes.go.
//
// Example usage:
//   logger := log.GetLoggerWithName("solver").With(
//       log.ModelNameKey, "BinaryLogistic",
//   )
//   logger.Info("fit started",
//       log.OperationKey, log.OperationFit,
//       log.SamplesKey, 1000,
//       log.FeaturesKey, 5,
//   )

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Implementations must be safe for
// concurrent use.
type Logger interface {
	// Debug logs per-iteration diagnostics. Disabled by default.
	Debug(msg string, fields ...any)

	// Info logs operational milestones such as the start and end of a fit.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not abort the operation, e.g. an
	// iteration guard being hit.
	Warn(msg string, fields ...any)

	// Error logs a failure. If the first field is an error it is attached
	// with its stack trace instead of being treated as a key.
	//
	//   logger.Error("fit failed", err, log.OperationKey, log.OperationFit)
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every subsequent record.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted. Use it to
	// skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers sharing one output and level.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
