package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type recordingRetryLogger struct {
	messages []string
}

func (r *recordingRetryLogger) Printf(format string, v ...interface{}) {
	r.messages = append(r.messages, fmt.Sprintf(format, v...))
}

func fastRetryConfig() *RetryConfig {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond
	config.Jitter = false
	return config
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("Expected MaxAttempts to be 3, got %d", config.MaxAttempts)
	}
	if config.BackoffFactor != 2.0 {
		t.Errorf("Expected BackoffFactor to be 2.0, got %f", config.BackoffFactor)
	}
	if len(config.RetryableErrors) != 3 {
		t.Errorf("Expected 3 retryable codes, got %d", len(config.RetryableErrors))
	}
}

func TestWithRetry_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestWithRetry_SuccessAfterBusy(t *testing.T) {
	logger := &recordingRetryLogger{}
	config := fastRetryConfig()
	config.Logger = logger

	calls := 0
	err := WithRetryContext(context.Background(), config, func() error {
		calls++
		if calls < 3 {
			return New("insert", errors.New("database is locked"), ErrCodeBusy)
		}
		return nil
	}, "InsertRecord")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if len(logger.messages) != 3 {
		t.Fatalf("Expected 2 retry messages and 1 success message, got %v", logger.messages)
	}
	if !strings.Contains(logger.messages[2], "'InsertRecord' succeeded after 3 attempts") {
		t.Errorf("Unexpected success message %q", logger.messages[2])
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return New("insert", errors.New("UNIQUE constraint failed"), ErrCodeDuplicate)
	})
	if !IsDuplicate(err) {
		t.Fatalf("Expected duplicate error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestWithRetry_PlainErrorIsNotRetried(t *testing.T) {
	calls := 0
	plain := errors.New("plain")
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return plain
	})
	if !errors.Is(err, plain) || calls != 1 {
		t.Errorf("Expected plain error after 1 call, got %v after %d", err, calls)
	}
}

func TestWithRetry_MaxAttemptsExceeded(t *testing.T) {
	config := fastRetryConfig()
	calls := 0
	err := WithRetry(context.Background(), config, func() error {
		calls++
		return New("list", errors.New("database is locked"), ErrCodeBusy)
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if calls != config.MaxAttempts {
		t.Errorf("Expected %d calls, got %d", config.MaxAttempts, calls)
	}
	if !strings.Contains(err.Error(), "operation failed after 3 attempts") {
		t.Errorf("Unexpected error text %q", err.Error())
	}
	if !IsBusy(err) {
		t.Error("Expected wrapped busy error to stay classifiable")
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := DefaultRetryConfig()
	config.InitialDelay = 200 * time.Millisecond

	calls := 0
	err := WithRetry(ctx, config, func() error {
		calls++
		cancel()
		return New("list", errors.New("database is locked"), ErrCodeBusy)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestCalculateDelay(t *testing.T) {
	config := &RetryConfig{
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      30 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 10 * time.Millisecond},
		{1, 20 * time.Millisecond},
		{2, 30 * time.Millisecond},
		{5, 30 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := calculateDelay(tt.attempt, config); got != tt.expected {
			t.Errorf("calculateDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestCalculateDelay_JitterBounded(t *testing.T) {
	config := &RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
	for i := 0; i < 20; i++ {
		got := calculateDelay(0, config)
		if got < 100*time.Millisecond || got > 125*time.Millisecond {
			t.Fatalf("jittered delay %v outside [100ms, 125ms]", got)
		}
	}
}
