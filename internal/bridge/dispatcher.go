package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"namedesk/internal/infrastructure/logging"
	"namedesk/internal/types"
)

// State is the dispatcher lifecycle state
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "uninitialized"
}

// Handler serves one command. args has exactly Command.Arity() elements.
type Handler func(ctx context.Context, args []any) (any, error)

// Dispatcher is the backend dispatch table. Handlers are registered while
// Uninitialized; after MarkReady the table is frozen and Invoke runs one
// handler at a time.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Command]Handler
	state    State

	exec   sync.Mutex
	logger logging.Logger
}

var _ Invoker = (*Dispatcher)(nil)

// NewDispatcher creates an empty, uninitialized dispatcher
func NewDispatcher(logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Dispatcher{
		handlers: make(map[Command]Handler, len(commandArity)),
		logger:   logger,
	}
}

// Register installs h for cmd
func (d *Dispatcher) Register(cmd Command, h Handler) error {
	if !cmd.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	if h == nil {
		return fmt.Errorf("register %s: nil handler", cmd)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Ready {
		return fmt.Errorf("%w: cannot register %s", ErrRegistrationClosed, cmd)
	}
	if _, exists := d.handlers[cmd]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, cmd)
	}
	d.handlers[cmd] = h
	return nil
}

// MarkReady freezes the table. Every command needs a handler.
func (d *Dispatcher) MarkReady() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Ready {
		return nil
	}
	var missing []string
	for _, cmd := range Commands() {
		if _, ok := d.handlers[cmd]; !ok {
			missing = append(missing, cmd.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHandlers, strings.Join(missing, ", "))
	}
	d.state = Ready
	d.logger.Info("bridge ready", "commands", len(d.handlers))
	return nil
}

// State returns the current lifecycle state
func (d *Dispatcher) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Invoke runs the handler for cmd
func (d *Dispatcher) Invoke(ctx context.Context, cmd Command, args ...any) (result any, err error) {
	if !cmd.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	if want := cmd.Arity(); len(args) != want {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, cmd, want, len(args))
	}

	d.mu.RLock()
	state, h := d.state, d.handlers[cmd]
	d.mu.RUnlock()
	if state != Ready {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, cmd)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.exec.Lock()
	defer d.exec.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", "command", cmd.String(), "panic", fmt.Sprint(r))
			result, err = nil, fmt.Errorf("%w: %s: %v", ErrHandlerPanic, cmd, r)
		}
	}()

	result, err = h(ctx, args)
	elapsed := time.Since(start)
	if err != nil {
		logging.LogError(d.logger, err, cmd.String(), map[string]interface{}{
			"duration_ms": elapsed.Milliseconds(),
		})
		return result, err
	}

	var fields map[string]interface{}
	if ok, known := envelopeSuccess(result); known {
		fields = map[string]interface{}{"success": ok}
	}
	logging.LogOperation(d.logger, cmd.String(), elapsed, fields)
	return result, nil
}

// envelopeSuccess reports the success flag of a result envelope
func envelopeSuccess(result any) (ok, known bool) {
	switch r := result.(type) {
	case types.Result:
		return r.Success, true
	case types.RecordsResult:
		return r.Success, true
	case types.DirectoryResult:
		return r.Success, true
	default:
		return false, false
	}
}
