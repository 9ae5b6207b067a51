package bridge

import "errors"

// Dispatch errors. They are wrapped with detail; match with errors.Is.
var (
	ErrNotReady           = errors.New("bridge not ready")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrDuplicateHandler   = errors.New("handler already registered")
	ErrRegistrationClosed = errors.New("registration closed")
	ErrMissingHandlers    = errors.New("handlers missing")
	ErrArity              = errors.New("wrong number of arguments")
	ErrHandlerPanic       = errors.New("handler panicked")
	ErrUnknownEvent       = errors.New("unknown event")
)
