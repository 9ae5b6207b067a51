package errors

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
)

// ClassifyError maps storage and filesystem errors to an ErrorCode.
// Driver error codes win over sentinel matching, which wins over message text.
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}
	if code := CodeOf(err); code != ErrCodeUnknown {
		return code
	}
	if code := classifySQLiteError(err); code != ErrCodeUnknown {
		return code
	}

	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrCodePermission
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	case errors.Is(err, sql.ErrConnDone):
		return ErrCodeConnection
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ErrCodeFilesystem
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"):
		return ErrCodeDuplicate
	case strings.Contains(msg, "not null constraint"), strings.Contains(msg, "check constraint"):
		return ErrCodeConstraint
	case strings.Contains(msg, "database is locked"):
		return ErrCodeBusy
	case strings.Contains(msg, "database disk image is malformed"):
		return ErrCodeCorruption
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return ErrCodeSchema
	case strings.Contains(msg, "no space left"), strings.Contains(msg, "disk full"):
		return ErrCodeDiskSpace
	case strings.Contains(msg, "permission denied"):
		return ErrCodePermission
	default:
		return ErrCodeUnknown
	}
}

// Wrap classifies err and wraps it for op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return New(op, err, ClassifyError(err))
}

// WrapWithContext is Wrap with extra context attached
func WrapWithContext(op string, err error, context map[string]string) error {
	if err == nil {
		return nil
	}
	return NewWithContext(op, err, ClassifyError(err), context)
}

// Validation creates a validation error for field
func Validation(op, field, reason string) error {
	return NewWithContext(op, errors.New(field+": "+reason), ErrCodeValidation, map[string]string{
		"field": field,
	})
}

// Connection creates a connection error with details
func Connection(op, details string) error {
	return NewWithContext(op, errors.New("connection error: "+details), ErrCodeConnection, map[string]string{
		"details": details,
	})
}
