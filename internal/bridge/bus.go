package bridge

import (
	"fmt"
	"sync"

	"namedesk/internal/infrastructure/logging"
)

// Bus is an in-process Events implementation. Delivery is synchronous,
// in subscription order, and a panicking listener does not stop the rest.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Event][]busListener
	logger logging.Logger
}

type busListener struct {
	id uint64
	fn Listener
}

var _ Events = (*Bus)(nil)

// NewBus creates an empty bus
func NewBus(logger logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Bus{
		subs:   make(map[Event][]busListener),
		logger: logger,
	}
}

// Send delivers args to every listener of event. Unknown events are dropped.
func (b *Bus) Send(event Event, args ...any) {
	if !event.Valid() {
		b.logger.Warn("dropping unknown event", "event", event.String())
		return
	}

	b.mu.RLock()
	listeners := append([]busListener(nil), b.subs[event]...)
	b.mu.RUnlock()

	for _, l := range listeners {
		b.deliver(event, l, args)
	}
}

func (b *Bus) deliver(event Event, l busListener, args []any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked",
				"event", event.String(), "listener", l.id, "panic", fmt.Sprint(r))
		}
	}()
	l.fn(args...)
}

// On subscribes listener to event
func (b *Bus) On(event Event, listener Listener) Subscription {
	if listener == nil || !event.Valid() {
		return Subscription{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[event] = append(b.subs[event], busListener{id: b.nextID, fn: listener})
	return Subscription{Event: event, id: b.nextID}
}

// Off removes a subscription; unknown or zero subscriptions are ignored
func (b *Bus) Off(sub Subscription) {
	if sub.id == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	listeners := b.subs[sub.Event]
	for i, l := range listeners {
		if l.id == sub.id {
			b.subs[sub.Event] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of listeners on event
func (b *Bus) ListenerCount(event Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[event])
}
