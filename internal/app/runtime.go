package app

import (
	"context"
	"sync"

	"namedesk/internal/bridge"
	"namedesk/internal/infrastructure/logging"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Runtime is the part of the Wails runtime the desktop shell uses
type Runtime interface {
	EventsEmit(ctx context.Context, name string, data ...interface{})
	EventsOn(ctx context.Context, name string, callback func(data ...interface{})) func()
	// OpenDirectoryDialog returns "" when the user cancels
	OpenDirectoryDialog(ctx context.Context, title string) (string, error)
}

type wailsRuntime struct{}

func (wailsRuntime) EventsEmit(ctx context.Context, name string, data ...interface{}) {
	runtime.EventsEmit(ctx, name, data...)
}

func (wailsRuntime) EventsOn(ctx context.Context, name string, callback func(data ...interface{})) func() {
	return runtime.EventsOn(ctx, name, callback)
}

func (wailsRuntime) OpenDirectoryDialog(ctx context.Context, title string) (string, error) {
	return runtime.OpenDirectoryDialog(ctx, runtime.OpenDialogOptions{Title: title})
}

// runtimeEvents carries bridge events over the Wails event bus. It needs
// the context Wails passes to OnStartup; until bind is called, sends are
// dropped and subscriptions fail.
type runtimeEvents struct {
	rt     Runtime
	logger logging.Logger

	mu      sync.Mutex
	ctx     context.Context
	nextID  uint64
	cancels map[uint64]func()
}

var _ bridge.Events = (*runtimeEvents)(nil)

func newRuntimeEvents(rt Runtime, logger logging.Logger) *runtimeEvents {
	return &runtimeEvents{rt: rt, logger: logger, cancels: make(map[uint64]func())}
}

func (e *runtimeEvents) bind(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx = ctx
}

func (e *runtimeEvents) context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

func (e *runtimeEvents) Send(event bridge.Event, args ...any) {
	if !event.Valid() {
		e.logger.Warn("dropping unknown event", "event", event.String())
		return
	}
	ctx := e.context()
	if ctx == nil {
		e.logger.Warn("runtime not started, dropping event", "event", event.String())
		return
	}
	e.rt.EventsEmit(ctx, event.String(), args...)
}

func (e *runtimeEvents) On(event bridge.Event, listener bridge.Listener) bridge.Subscription {
	if !event.Valid() || listener == nil {
		return bridge.Subscription{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		e.logger.Warn("runtime not started, cannot subscribe", "event", event.String())
		return bridge.Subscription{}
	}

	cancel := e.rt.EventsOn(e.ctx, event.String(), func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("event listener panicked", "event", event.String(), "panic", r)
			}
		}()
		listener(data...)
	})
	e.nextID++
	e.cancels[e.nextID] = cancel
	return bridge.NewSubscription(event, e.nextID)
}

func (e *runtimeEvents) Off(sub bridge.Subscription) {
	e.mu.Lock()
	cancel, ok := e.cancels[sub.ID()]
	delete(e.cancels, sub.ID())
	e.mu.Unlock()
	if ok && cancel != nil {
		cancel()
	}
}
