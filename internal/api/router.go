// Package api serves the bridge over loopback HTTP with Server-Sent Events
// for backend pushes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"namedesk/internal/bridge"
	"namedesk/internal/infrastructure/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Options wires the router to a backend
type Options struct {
	Invoker bridge.Invoker
	// Events receives UI-originated events posted to /send
	Events bridge.Events
	// Stream serves GET /events
	Stream http.Handler
	// Health reports readiness for /health/ready
	Health func(ctx context.Context) error
	Logger logging.Logger
}

type handler struct {
	opts   Options
	logger logging.Logger
}

// NewRouter creates the chi router for the headless transport
func NewRouter(opts Options) chi.Router {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	h := &handler{opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Logger))

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", h.ready)

	r.Post("/invoke/{command}", h.invoke)
	r.Post("/send/{event}", h.send)
	if opts.Stream != nil {
		r.Get("/events", opts.Stream.ServeHTTP)
	}
	return r
}

func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.opts.Health != nil {
		if err := h.opts.Health(r.Context()); err != nil {
			writeJSON(w, h.logger, http.StatusServiceUnavailable, errorBody(readinessCode(err), err.Error()))
			return
		}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) invoke(w http.ResponseWriter, r *http.Request) {
	cmd, err := bridge.ParseCommand(chi.URLParam(r, "command"))
	if err != nil {
		writeJSON(w, h.logger, http.StatusNotFound, errorBody(codeUnknownCommand, err.Error()))
		return
	}
	args, err := readArgs(w, r)
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody(codeBadRequest, err.Error()))
		return
	}

	result, err := h.opts.Invoker.Invoke(r.Context(), cmd, args...)
	if err != nil {
		status, code := classify(err)
		writeJSON(w, h.logger, status, errorBody(code, err.Error()))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *handler) send(w http.ResponseWriter, r *http.Request) {
	event := bridge.Event(chi.URLParam(r, "event"))
	dir, ok := event.Direction()
	if !ok {
		writeJSON(w, h.logger, http.StatusNotFound, errorBody(codeUnknownEvent, fmt.Sprintf("%v: %q", bridge.ErrUnknownEvent, event)))
		return
	}
	if dir != bridge.ToBackend {
		writeJSON(w, h.logger, http.StatusForbidden, errorBody(codeForbidden, fmt.Sprintf("event %q is sent by the backend only", event)))
		return
	}
	args, err := readArgs(w, r)
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody(codeBadRequest, err.Error()))
		return
	}

	if h.opts.Events != nil {
		h.opts.Events.Send(event, args...)
	}
	writeJSON(w, h.logger, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// readArgs decodes {"args":[...]}; an empty body means no arguments
func readArgs(w http.ResponseWriter, r *http.Request) ([]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req argsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return []any{}, nil
		}
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid request body: trailing data")
	}
	if req.Args == nil {
		req.Args = []any{}
	}
	return req.Args, nil
}

// classify maps a dispatch error to its HTTP status and error code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, bridge.ErrUnknownCommand):
		return http.StatusNotFound, codeUnknownCommand
	case errors.Is(err, bridge.ErrArity):
		return http.StatusBadRequest, codeArity
	case errors.Is(err, bridge.ErrNotReady):
		return http.StatusServiceUnavailable, codeNotReady
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeUnavailable
	case errors.Is(err, bridge.ErrHandlerPanic):
		return http.StatusInternalServerError, codePanic
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func readinessCode(err error) string {
	if errors.Is(err, bridge.ErrNotReady) {
		return codeNotReady
	}
	return codeUnavailable
}

func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
