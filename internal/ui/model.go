// Package ui is the unprivileged view model. It reaches the backend only
// through bridge.API and bridge.Events.
package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"namedesk/internal/bridge"
	"namedesk/internal/types"

	"github.com/google/uuid"
)

// EmptyNameWarning is shown when submitting a blank name
const EmptyNameWarning = "Name field is empty!"

// DefaultWarningTimeout is how long the warning stays visible
const DefaultWarningTimeout = time.Second

// View is a snapshot of everything a renderer shows
type View struct {
	Name         string
	Warning      string
	Error        string
	Records      []types.Record
	Directory    string
	Entries      []string
	ReadyMessage string
}

func (v View) clone() View {
	v.Records = append([]types.Record{}, v.Records...)
	v.Entries = append([]string{}, v.Entries...)
	return v
}

// Option configures a Model
type Option func(*Model)

// WithWarningTimeout sets how long the empty-name warning is shown
func WithWarningTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.warningTimeout = d
		}
	}
}

// WithIDGenerator replaces the UUIDv4 record id source
func WithIDGenerator(fn func() string) Option {
	return func(m *Model) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// Model holds UI state and turns user actions into bridge calls
type Model struct {
	api            bridge.API
	events         bridge.Events
	warningTimeout time.Duration
	newID          func() string

	mu           sync.Mutex
	view         View
	warningTimer *time.Timer
	warningGen   uint64
	nextListener int
	listeners    map[int]func(View)
	subs         []bridge.Subscription
}

// NewModel creates a model. events may be nil when no push channel exists.
func NewModel(api bridge.API, events bridge.Events, opts ...Option) *Model {
	m := &Model{
		api:            api,
		events:         events,
		warningTimeout: DefaultWarningTimeout,
		newID:          func() string { return uuid.NewString() },
		listeners:      make(map[int]func(View)),
		view:           View{Records: []types.Record{}, Entries: []string{}},
	}
	for _, opt := range opts {
		opt(m)
	}

	if events != nil {
		m.subs = append(m.subs,
			events.On(bridge.EventProcessReady, m.onProcessReady),
			events.On(bridge.EventDirectoryChanged, m.onDirectoryChanged),
			events.On(bridge.EventDirectoryPicked, m.onDirectoryPicked),
		)
	}
	return m
}

// Close drops event subscriptions and any pending warning timer
func (m *Model) Close() {
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	if m.warningTimer != nil {
		m.warningTimer.Stop()
		m.warningTimer = nil
	}
	m.mu.Unlock()

	for _, s := range subs {
		m.events.Off(s)
	}
}

// View returns a copy of the current state
func (m *Model) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.clone()
}

// OnChange registers fn to receive every new snapshot; call the result to stop
func (m *Model) OnChange(fn func(View)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// update applies fn under the lock and notifies listeners outside it
func (m *Model) update(fn func(v *View)) {
	m.mu.Lock()
	fn(&m.view)
	snapshot := m.view.clone()
	listeners := make([]func(View), 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// SetName updates the input field
func (m *Model) SetName(name string) {
	m.update(func(v *View) { v.Name = name })
}

// Submit adds the current name as a new record. A blank name shows the
// warning and never reaches the bridge.
func (m *Model) Submit(ctx context.Context) types.Result {
	m.mu.Lock()
	name := strings.TrimSpace(m.view.Name)
	m.mu.Unlock()

	if name == "" {
		m.showWarning()
		return types.Failure(errors.New(EmptyNameWarning))
	}

	res := m.api.AddRecord(ctx, m.newID(), name)
	if !res.Success {
		m.update(func(v *View) { v.Error = res.Error })
		return res
	}

	m.update(func(v *View) {
		v.Name = ""
		v.Error = ""
	})
	m.Refresh(ctx)
	return res
}

func (m *Model) showWarning() {
	m.update(func(v *View) {
		v.Warning = EmptyNameWarning
		if m.warningTimer != nil {
			m.warningTimer.Stop()
		}
		m.warningGen++
		gen := m.warningGen
		m.warningTimer = time.AfterFunc(m.warningTimeout, func() { m.clearWarning(gen) })
	})
}

// clearWarning hides the warning unless a newer one replaced generation gen
func (m *Model) clearWarning(gen uint64) {
	m.update(func(v *View) {
		if m.warningGen == gen {
			m.warningTimer = nil
			v.Warning = ""
		}
	})
}

// Refresh re-reads the full record list
func (m *Model) Refresh(ctx context.Context) types.RecordsResult {
	res := m.api.ListRecords(ctx)
	m.update(func(v *View) {
		v.Records = append([]types.Record{}, res.Records...)
		if res.Success {
			v.Error = ""
		} else {
			v.Error = res.Error
		}
	})
	return res
}

// Delete removes record and re-reads the list whatever the outcome
func (m *Model) Delete(ctx context.Context, record types.Record) types.Result {
	res := m.api.DeleteRecord(ctx, record.ID, record.Name)
	m.Refresh(ctx)
	if !res.Success {
		m.update(func(v *View) { v.Error = res.Error })
	}
	return res
}

// SelectDirectory lists the directory containing pickedPath
func (m *Model) SelectDirectory(ctx context.Context, pickedPath string) types.DirectoryResult {
	if strings.TrimSpace(pickedPath) == "" {
		return types.DirectoryFailure(errors.New("no path selected"))
	}
	return m.OpenDirectory(ctx, filepath.Dir(pickedPath))
}

// OpenDirectory lists dir itself and makes it the current directory
func (m *Model) OpenDirectory(ctx context.Context, dir string) types.DirectoryResult {
	if strings.TrimSpace(dir) == "" {
		return types.DirectoryFailure(errors.New("no path selected"))
	}
	return m.listDirectory(ctx, dir)
}

func (m *Model) listDirectory(ctx context.Context, dir string) types.DirectoryResult {
	res := m.api.ListDirectory(ctx, dir)
	m.update(func(v *View) {
		v.Directory = dir
		v.Entries = append([]string{}, res.Entries...)
		if res.Success {
			v.Error = ""
		} else {
			v.Error = res.Error
		}
	})
	return res
}

// Ping sends n to the backend without waiting for an answer
func (m *Model) Ping(n int) {
	if m.events != nil {
		m.events.Send(bridge.EventPing, n)
	}
}

// PickDirectory asks the host for a native directory picker. The chosen
// directory arrives as directory-picked and is opened then.
func (m *Model) PickDirectory() {
	if m.events != nil {
		m.events.Send(bridge.EventPickDirectory)
	}
}

func (m *Model) onDirectoryPicked(args ...any) {
	if len(args) == 0 {
		return
	}
	if dir, ok := args[0].(string); ok {
		m.OpenDirectory(context.Background(), dir)
	}
}

func (m *Model) onProcessReady(args ...any) {
	msg := ""
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			msg = s
		}
	}
	m.update(func(v *View) { v.ReadyMessage = msg })
}

func (m *Model) onDirectoryChanged(args ...any) {
	if len(args) == 0 {
		return
	}
	changed, ok := args[0].(string)
	if !ok {
		return
	}
	m.mu.Lock()
	current := m.view.Directory
	m.mu.Unlock()

	if current != "" && filepath.Clean(changed) == filepath.Clean(current) {
		m.listDirectory(context.Background(), current)
	}
}
