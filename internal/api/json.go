package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"namedesk/internal/infrastructure/logging"
)

func writeJSON(w http.ResponseWriter, logger logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("json encode failed", "error", err)
	}
}

// ErrBadRequest is a malformed request body
var ErrBadRequest = errors.New("bad request")

// Error codes carried next to the message in error bodies
const (
	codeBadRequest     = "bad_request"
	codeArity          = "arity"
	codeUnknownCommand = "unknown_command"
	codeUnknownEvent   = "unknown_event"
	codeForbidden      = "forbidden"
	codeNotReady       = "not_ready"
	codeUnavailable    = "unavailable"
	codePanic          = "handler_panic"
	codeInternal       = "internal"
)

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func errorBody(code, msg string) errResponse {
	return errResponse{Error: msg, Code: code}
}

// argsRequest is the body of /invoke and /send
type argsRequest struct {
	Args []any `json:"args"`
}
