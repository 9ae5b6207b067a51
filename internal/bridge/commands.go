// Package bridge defines the fixed command and event set shared by the
// backend and the UI, and the dispatch table that connects them.
package bridge

import "fmt"

// Command names a bridge operation
type Command string

const (
	ListRecords   Command = "list-records"
	AddRecord     Command = "add-record"
	DeleteRecord  Command = "delete-record"
	ListDirectory Command = "list-directory"
)

var commandArity = map[Command]int{
	ListRecords:   0,
	AddRecord:     2,
	DeleteRecord:  2,
	ListDirectory: 1,
}

// Commands returns the fixed command set in a stable order
func Commands() []Command {
	return []Command{ListRecords, AddRecord, DeleteRecord, ListDirectory}
}

// Valid reports whether c is part of the command set
func (c Command) Valid() bool {
	_, ok := commandArity[c]
	return ok
}

// Arity is the number of arguments c takes, or -1 for an unknown command
func (c Command) Arity() int {
	if n, ok := commandArity[c]; ok {
		return n
	}
	return -1
}

func (c Command) String() string { return string(c) }

// ParseCommand maps a wire name to a Command
func ParseCommand(name string) (Command, error) {
	c := Command(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return c, nil
}

// Event names a push notification
type Event string

const (
	// EventPing carries a number from the UI to the backend
	EventPing Event = "ping"
	// EventProcessReady carries the backend start timestamp to the UI, once
	EventProcessReady Event = "process-ready"
	// EventDirectoryChanged carries the watched root to the UI
	EventDirectoryChanged Event = "directory-changed"
	// EventPickDirectory asks the host to show a native directory picker
	EventPickDirectory Event = "pick-directory"
	// EventDirectoryPicked carries the chosen directory to the UI
	EventDirectoryPicked Event = "directory-picked"
)

// Direction is the way an event travels
type Direction int

const (
	// ToBackend events are sent by the UI
	ToBackend Direction = iota
	// ToUI events are sent by the backend
	ToUI
)

func (d Direction) String() string {
	if d == ToBackend {
		return "to-backend"
	}
	return "to-ui"
}

var eventDirection = map[Event]Direction{
	EventPing:             ToBackend,
	EventProcessReady:     ToUI,
	EventDirectoryChanged: ToUI,
	EventPickDirectory:    ToBackend,
	EventDirectoryPicked:  ToUI,
}

// AllEvents returns the fixed event set in a stable order
func AllEvents() []Event {
	return []Event{EventPing, EventProcessReady, EventDirectoryChanged, EventPickDirectory, EventDirectoryPicked}
}

// EventsTo returns the events travelling in direction d
func EventsTo(d Direction) []Event {
	var out []Event
	for _, e := range AllEvents() {
		if eventDirection[e] == d {
			out = append(out, e)
		}
	}
	return out
}

// Direction returns the direction of e; ok is false for unknown events
func (e Event) Direction() (d Direction, ok bool) {
	d, ok = eventDirection[e]
	return d, ok
}

func (e Event) Valid() bool {
	_, ok := eventDirection[e]
	return ok
}

func (e Event) String() string { return string(e) }
