package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode classifies storage and filesystem failures
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeDuplicate
	ErrCodeConstraint
	ErrCodeConnection
	ErrCodeBusy
	ErrCodeTimeout
	ErrCodeValidation
	ErrCodePermission
	ErrCodeDiskSpace
	ErrCodeCorruption
	ErrCodeSchema
	ErrCodeInternal
	ErrCodeFilesystem
)

var codeNames = map[ErrorCode]string{
	ErrCodeNotFound:   "NOT_FOUND",
	ErrCodeDuplicate:  "DUPLICATE",
	ErrCodeConstraint: "CONSTRAINT",
	ErrCodeConnection: "CONNECTION",
	ErrCodeBusy:       "BUSY",
	ErrCodeTimeout:    "TIMEOUT",
	ErrCodeValidation: "VALIDATION",
	ErrCodePermission: "PERMISSION",
	ErrCodeDiskSpace:  "DISK_SPACE",
	ErrCodeCorruption: "CORRUPTION",
	ErrCodeSchema:     "SCHEMA",
	ErrCodeInternal:   "INTERNAL",
	ErrCodeFilesystem: "FILESYSTEM",
}

// String returns the upper-case name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// AppError is a classified error raised by the storage or filesystem layer.
// Message() is what crosses the bridge; Error() additionally carries the
// operation, code and context for logs.
type AppError struct {
	Op        string
	Err       error
	Code      ErrorCode
	Retryable bool
	Context   map[string]string
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e == nil {
		return "app error"
	}

	var parts []string
	if e.Op != "" {
		parts = append(parts, "op="+e.Op)
	}
	if e.Code != ErrCodeUnknown {
		parts = append(parts, "code="+e.Code.String())
	}
	if e.Retryable {
		parts = append(parts, "retryable=true")
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
	}

	suffix := ""
	if len(parts) > 0 {
		suffix = " [" + strings.Join(parts, " ") + "]"
	}
	return e.Message() + suffix
}

// Message returns the underlying error text without the diagnostic suffix
func (e *AppError) Message() string {
	if e == nil || e.Err == nil {
		return "app error"
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *AppError by code, otherwise defers to the wrapped error
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// GetCode returns the code name (logging.CodedError)
func (e *AppError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// IsRetryable reports whether the operation may succeed when repeated
func (e *AppError) IsRetryable() bool {
	return e != nil && e.Retryable
}

// GetContext returns the context map, never nil
func (e *AppError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return map[string]string{}
	}
	return e.Context
}

// GetTimestamp returns when the error was created
func (e *AppError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// New creates a classified error
func New(op string, err error, code ErrorCode) *AppError {
	return &AppError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableCode(code),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewWithContext creates a classified error with a copy of context
func NewWithContext(op string, err error, code ErrorCode, context map[string]string) *AppError {
	appErr := New(op, err, code)
	for k, v := range context {
		appErr.Context[k] = v
	}
	return appErr
}

func isRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeBusy, ErrCodeConnection, ErrCodeTimeout:
		return true
	default:
		return false
	}
}

// CodeOf returns the code of the first *AppError in err's chain
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeUnknown
}

// MessageOf returns the user-facing message of err.
// For an *AppError it omits the diagnostic suffix.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}

// IsRetryable reports whether err carries a retryable *AppError
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Retryable
}

func IsNotFound(err error) bool   { return CodeOf(err) == ErrCodeNotFound }
func IsDuplicate(err error) bool  { return CodeOf(err) == ErrCodeDuplicate }
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }
func IsPermission(err error) bool { return CodeOf(err) == ErrCodePermission }
func IsBusy(err error) bool       { return CodeOf(err) == ErrCodeBusy }
func IsConnection(err error) bool { return CodeOf(err) == ErrCodeConnection }
