package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the structured logger used across the backend.
// fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// SlogLogger writes JSON lines through log/slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger logs INFO and above to stderr
func NewDefaultLogger() Logger {
	return NewLogger(os.Stderr, "info")
}

// NewLogger creates a JSON logger writing to w at the given level name
func NewLogger(w io.Writer, level string) *SlogLogger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &SlogLogger{logger: slog.New(handler)}
}

// NewNopLogger discards everything
func NewNopLogger() Logger {
	return NewLogger(io.Discard, "error")
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown names mean INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// With returns a logger that adds fields to every entry
func (l *SlogLogger) With(fields ...interface{}) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(fields...)}
}

// Slog exposes the underlying *slog.Logger
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *SlogLogger) Debug(msg string, fields ...interface{}) { l.logger.Debug(msg, fields...) }
func (l *SlogLogger) Info(msg string, fields ...interface{})  { l.logger.Info(msg, fields...) }
func (l *SlogLogger) Warn(msg string, fields ...interface{})  { l.logger.Warn(msg, fields...) }
func (l *SlogLogger) Error(msg string, fields ...interface{}) { l.logger.Error(msg, fields...) }

// CodedError is implemented by classified errors that carry diagnostics.
// Declared here so logging does not import the errors package.
type CodedError interface {
	error
	GetCode() string
	IsRetryable() bool
	GetContext() map[string]string
	GetTimestamp() time.Time
}

// LogError logs err for operation at ERROR, expanding coded error details
func LogError(logger Logger, err error, operation string, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	if err == nil {
		return
	}

	fields := []interface{}{"operation", operation}

	var coded CodedError
	if errors.As(err, &coded) {
		fields = append(fields,
			"error_code", coded.GetCode(),
			"retryable", coded.IsRetryable(),
		)
		for k, v := range coded.GetContext() {
			fields = append(fields, k, v)
		}
	} else {
		fields = append(fields, "error_type", fmt.Sprintf("%T", err))
	}

	for k, v := range context {
		fields = append(fields, k, v)
	}
	fields = append(fields, "error", err.Error())

	logger.Error(operation+" failed", fields...)
}

// LogOperation logs a completed operation with its duration at DEBUG
func LogOperation(logger Logger, operation string, duration time.Duration, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}
	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Debug(operation+" completed", fields...)
}
