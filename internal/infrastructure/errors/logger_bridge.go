package errors

import (
	"fmt"

	"namedesk/internal/infrastructure/logging"
)

// LoggerBridge adapts logging.Logger to RetryLogger
type LoggerBridge struct {
	logger logging.Logger
}

// NewLoggerBridge wraps logger; retry messages are logged at WARN
func NewLoggerBridge(logger logging.Logger) RetryLogger {
	return &LoggerBridge{logger: logger}
}

// Printf implements RetryLogger
func (b *LoggerBridge) Printf(format string, v ...interface{}) {
	if b.logger != nil {
		b.logger.Warn(fmt.Sprintf(format, v...), "component", "retry")
	}
}
