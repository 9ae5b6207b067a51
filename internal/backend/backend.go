// Package backend is the privileged side of the bridge. It owns the records
// database and filesystem access and serves the fixed command set.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"namedesk/internal/bridge"
	"namedesk/internal/database"
	"namedesk/internal/directory"
	"namedesk/internal/infrastructure/logging"
	"namedesk/internal/repository"
)

// ReadyTimeFormat formats the process-ready payload
const ReadyTimeFormat = "2006-01-02 15:04:05"

// DirectoryOptions controls list-directory
type DirectoryOptions struct {
	Ignore   []string
	Watch    bool
	Debounce time.Duration
}

// Options configures a Backend
type Options struct {
	Database  *database.Config
	Directory DirectoryOptions
	// Dirs locates the per-user data and resources directories (production)
	Dirs database.DataDirs
	// Events carries pushes to the UI and pings from it; nil means a private Bus
	Events bridge.Events
	Logger logging.Logger
	// Now is the clock for the process-ready timestamp
	Now func() time.Time
}

// Backend wires storage, filesystem access and the dispatch table
type Backend struct {
	opts       Options
	logger     logging.Logger
	events     bridge.Events
	dispatcher *bridge.Dispatcher

	mu       sync.Mutex
	started  bool
	closed   bool
	db       *database.SQLiteService
	handlers *handlers
	pingSub  bridge.Subscription
	location database.Location
}

// New creates an unstarted backend
func New(opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultLogger()
	}
	if opts.Database == nil {
		opts.Database = database.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	events := opts.Events
	if events == nil {
		events = bridge.NewBus(opts.Logger)
	}
	return &Backend{
		opts:       opts,
		logger:     opts.Logger,
		events:     events,
		dispatcher: bridge.NewDispatcher(opts.Logger),
	}
}

// Start resolves the database location, opens and migrates it, registers
// the command handlers and marks the bridge ready
func (b *Backend) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New("backend closed")
	}
	if b.started {
		return errors.New("backend already started")
	}

	if err := b.opts.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	loc, err := database.ResolveLocation(b.opts.Database, b.opts.Dirs, b.logger)
	if err != nil {
		return fmt.Errorf("resolve database location: %w", err)
	}

	db := database.NewSQLiteService(b.logger)
	if err := db.Connect(ctx, b.opts.Database, loc.Path); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return fmt.Errorf("migrate database: %w", err)
	}

	lister := directory.NewLister(b.opts.Directory.Ignore)
	h := &handlers{
		repo:   repository.NewSQLiteRepository(db, b.logger),
		lister: lister,
		logger: b.logger,
	}
	if b.opts.Directory.Watch {
		h.watcher = directory.NewWatcher(b.opts.Directory.Debounce, lister, func(string) {
			b.events.Send(bridge.EventDirectoryChanged, h.changedPath())
		}, b.logger)
	}

	if err := h.register(b.dispatcher); err != nil {
		db.Close()
		return fmt.Errorf("register handlers: %w", err)
	}
	if err := b.dispatcher.MarkReady(); err != nil {
		db.Close()
		return fmt.Errorf("mark ready: %w", err)
	}

	b.pingSub = b.events.On(bridge.EventPing, func(args ...any) {
		var value any
		if len(args) > 0 {
			value = args[0]
		}
		b.logger.Info("ping received", "value", value)
	})

	b.db, b.handlers, b.location, b.started = db, h, loc, true
	b.logger.Info("backend started", "database", loc.Path, "seeded", loc.Seeded)
	return nil
}

// AnnounceReady sends process-ready with the current time
func (b *Backend) AnnounceReady() {
	b.events.Send(bridge.EventProcessReady, b.opts.Now().Format(ReadyTimeFormat))
}

// Invoker is the dispatch table served to transports
func (b *Backend) Invoker() bridge.Invoker { return b.dispatcher }

// Dispatcher exposes lifecycle state to transports
func (b *Backend) Dispatcher() *bridge.Dispatcher { return b.dispatcher }

// Events is the event hub used by the backend
func (b *Backend) Events() bridge.Events { return b.events }

// Ready reports whether commands are being served
func (b *Backend) Ready() bool {
	return b.dispatcher.State() == bridge.Ready
}

// DatabasePath is the resolved database file, empty before Start
func (b *Backend) DatabasePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location.Path
}

// Health checks that the bridge is ready and storage answers
func (b *Backend) Health(ctx context.Context) error {
	if !b.Ready() {
		return bridge.ErrNotReady
	}
	b.mu.Lock()
	db := b.db
	b.mu.Unlock()
	if db == nil {
		return errors.New("backend closed")
	}
	return db.Health(ctx)
}

// Close stops the watcher and closes storage. It is safe to call repeatedly.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.events.Off(b.pingSub)
	if b.handlers != nil && b.handlers.watcher != nil {
		b.handlers.watcher.Stop()
	}

	var err error
	if b.db != nil {
		err = b.db.Close()
		b.db = nil
	}
	b.logger.Info("backend closed")
	return err
}
