package bridge

import (
	"context"

	"namedesk/internal/types"
)

// API is everything the UI may ask of the backend
type API interface {
	ListRecords(ctx context.Context) types.RecordsResult
	AddRecord(ctx context.Context, id, name string) types.Result
	DeleteRecord(ctx context.Context, id, name string) types.Result
	ListDirectory(ctx context.Context, path string) types.DirectoryResult
}

// Invoker performs one request/response round trip. The result is the
// handler's envelope, either as a Go value or as raw JSON.
type Invoker interface {
	Invoke(ctx context.Context, cmd Command, args ...any) (any, error)
}

// Listener receives the arguments of a pushed event
type Listener func(args ...any)

// Subscription identifies a registered listener. The zero value is inert.
type Subscription struct {
	Event Event
	id    uint64
}

// NewSubscription is used by Events implementations outside this package
func NewSubscription(event Event, id uint64) Subscription {
	return Subscription{Event: event, id: id}
}

// ID is the implementation-assigned identifier; zero means no subscription
func (s Subscription) ID() uint64 { return s.id }

// Events is fire-and-forget messaging plus push subscriptions
type Events interface {
	Send(event Event, args ...any)
	On(event Event, listener Listener) Subscription
	Off(sub Subscription)
}
