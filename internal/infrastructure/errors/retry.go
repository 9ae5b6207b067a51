package errors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// RetryLogger receives retry progress messages
type RetryLogger interface {
	Printf(format string, v ...interface{})
}

// RetryConfig holds the backoff policy for retryable storage operations
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	Jitter          bool
	RetryableErrors []ErrorCode
	Logger          RetryLogger
}

// DefaultRetryConfig retries busy/locked databases a few times with short backoff
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    50 * time.Millisecond,
		MaxDelay:        time.Second,
		BackoffFactor:   2.0,
		Jitter:          true,
		RetryableErrors: []ErrorCode{ErrCodeBusy, ErrCodeConnection, ErrCodeTimeout},
	}
}

// RetryableOperation is a unit of work that may be repeated
type RetryableOperation func() error

// WithRetry runs operation until it succeeds, fails with a non-retryable
// error, exhausts MaxAttempts, or ctx is done
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return WithRetryContext(ctx, config, operation, "")
}

// WithRetryContext is WithRetry with an operation name used in messages
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, name string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := max(config.MaxAttempts, 1)

	label := "operation"
	if name != "" {
		label = fmt.Sprintf("operation '%s'", name)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 {
				config.logf("%s succeeded after %d attempts", label, attempt+1)
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err, config) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		delay := calculateDelay(attempt, config)
		config.logf("%s failed (attempt %d/%d), retrying in %v: %v", label, attempt+1, attempts, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s cancelled during retry: %w", label, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", label, attempts, lastErr)
}

func (c *RetryConfig) logf(format string, v ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

func shouldRetry(err error, config *RetryConfig) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) || !appErr.Retryable {
		return false
	}
	return slices.Contains(config.RetryableErrors, appErr.Code)
}

func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	multiplier := 1.0
	for range attempt {
		multiplier *= config.BackoffFactor
	}
	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	if config.Jitter && delay > 0 {
		if jitter := int64(float64(delay) * 0.25); jitter > 0 {
			delay += time.Duration(time.Now().UnixNano() % jitter)
		}
	}
	if config.MaxDelay > 0 {
		delay = min(delay, config.MaxDelay)
	}
	return delay
}
