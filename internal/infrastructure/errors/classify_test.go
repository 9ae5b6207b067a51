package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyError(t *testing.T) {
	_, missingErr := os.Stat(filepath.Join(t.TempDir(), "missing"))

	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"nil", nil, ErrCodeUnknown},
		{"already classified", New("op", errors.New("x"), ErrCodeValidation), ErrCodeValidation},
		{"no rows", sql.ErrNoRows, ErrCodeNotFound},
		{"missing path", missingErr, ErrCodeNotFound},
		{"permission", fmt.Errorf("walk: %w", fs.ErrPermission), ErrCodePermission},
		{"other path error", &fs.PathError{Op: "readdirent", Path: "/x", Err: errors.New("input/output error")}, ErrCodeFilesystem},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"unique message", errors.New("UNIQUE constraint failed: records.id"), ErrCodeDuplicate},
		{"locked message", errors.New("database is locked"), ErrCodeBusy},
		{"missing table", errors.New("no such table: records"), ErrCodeSchema},
		{"unknown", errors.New("something else"), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.expected {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
	err := WrapWithContext("DeleteRecord", errors.New("database is locked"), map[string]string{"record_id": "u1"})
	if !IsBusy(err) || !IsRetryable(err) {
		t.Errorf("expected retryable busy error, got %v", err)
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Context["record_id"] != "u1" {
		t.Errorf("context not attached: %v", err)
	}
}

func TestValidation(t *testing.T) {
	err := Validation("AddRecord", "name", "cannot be blank")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if MessageOf(err) != "name: cannot be blank" {
		t.Errorf("MessageOf() = %q", MessageOf(err))
	}
}
