// Package app hosts the backend in the desktop shell and in the headless
// server.
package app

import (
	"context"
	"sync"
	"time"

	"namedesk/internal/backend"
	"namedesk/internal/bridge"
	"namedesk/internal/config"
	"namedesk/internal/database"
	"namedesk/internal/infrastructure/errors"
	"namedesk/internal/infrastructure/logging"
	"namedesk/internal/platform"
)

const (
	// startupTimeout bounds opening and migrating the database
	startupTimeout = 30 * time.Second
	// shutdownTimeout bounds closing the backend
	shutdownTimeout = 10 * time.Second
	// pickerTitle is the native directory dialog title
	pickerTitle = "Choose a directory"
)

// Option configures an App or the headless server
type Option func(*options)

type options struct {
	runtime Runtime
	dirs    database.DataDirs
	now     func() time.Time
}

// WithRuntime replaces the Wails runtime
func WithRuntime(rt Runtime) Option {
	return func(o *options) { o.runtime = rt }
}

// WithDirs replaces the platform data and resources directories
func WithDirs(dirs database.DataDirs) Option {
	return func(o *options) { o.dirs = dirs }
}

// WithClock replaces the clock used for the process-ready timestamp
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(cfg *config.Config, opts []Option) options {
	o := options{runtime: wailsRuntime{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dirs == nil {
		o.dirs = platform.NewDirs(cfg.App.Name)
	}
	return o
}

func newBackend(cfg *config.Config, o options, events bridge.Events, logger logging.Logger) *backend.Backend {
	return backend.New(backend.Options{
		Database: cfg.Database,
		Directory: backend.DirectoryOptions{
			Ignore:   cfg.Directory.Ignore,
			Watch:    cfg.Directory.Watch,
			Debounce: cfg.Directory.Debounce,
		},
		Dirs:   o.dirs,
		Events: events,
		Logger: logger,
		Now:    o.now,
	})
}

// App is the desktop application: Wails lifecycle hooks around a backend
type App struct {
	cfg     *config.Config
	logger  logging.Logger
	events  *runtimeEvents
	backend *backend.Backend
	bridge  *Bridge

	rt      Runtime
	pickSub bridge.Subscription

	mu        sync.Mutex
	ctx       context.Context
	readyOnce sync.Once
}

// NewApp creates the desktop application. Nothing is opened until Startup.
func NewApp(cfg *config.Config, logger logging.Logger, opts ...Option) *App {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	o := buildOptions(cfg, opts)
	events := newRuntimeEvents(o.runtime, logger)

	a := &App{
		cfg:     cfg,
		logger:  logger,
		events:  events,
		backend: newBackend(cfg, o, events, logger),
		rt:      o.runtime,
	}
	a.bridge = &Bridge{app: a, client: bridge.NewClient(a.backend.Invoker())}
	return a
}

// Bridge is the struct to bind into the webview
func (a *App) Bridge() *Bridge {
	return a.bridge
}

// Backend exposes the hosted backend
func (a *App) Backend() *backend.Backend {
	return a.backend
}

func (a *App) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Startup is called at application startup. A failed start is logged and
// leaves the bridge not ready, so every command answers with a failure.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
	a.events.bind(ctx)
	a.pickSub = a.events.On(bridge.EventPickDirectory, func(...any) { a.pickDirectory() })

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if err := a.backend.Start(startCtx); err != nil {
		logging.LogError(a.logger, errors.Wrap("startup", err), "startup", map[string]interface{}{
			"environment": a.cfg.App.Environment,
		})
		return
	}
	a.logger.Info("application started",
		"environment", a.cfg.App.Environment,
		"database", a.backend.DatabasePath())
}

// DomReady is called after front-end resources have been loaded. The
// process-ready event is sent on the first call only.
func (a *App) DomReady(ctx context.Context) {
	if !a.backend.Ready() {
		a.logger.Warn("frontend loaded but backend is not ready")
		return
	}
	a.readyOnce.Do(a.backend.AnnounceReady)
}

// pickDirectory shows the native picker and hands a chosen path to the UI
func (a *App) pickDirectory() {
	path, err := a.rt.OpenDirectoryDialog(a.context(), pickerTitle)
	if err != nil {
		logging.LogError(a.logger, errors.Wrap("pick-directory", err), "pick-directory", nil)
		return
	}
	if path == "" {
		return
	}
	a.events.Send(bridge.EventDirectoryPicked, path)
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	a.events.Off(a.pickSub)

	done := make(chan error, 1)
	go func() { done <- a.backend.Close() }()

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			logging.LogError(a.logger, errors.Wrap("shutdown", err), "shutdown", nil)
			return
		}
		a.logger.Info("application shutdown completed")
	case <-ctx.Done():
		a.logger.Warn("shutdown interrupted", "error", ctx.Err())
	case <-timer.C:
		logging.LogError(a.logger, errors.New("shutdown", context.DeadlineExceeded, errors.ErrCodeTimeout), "shutdown", nil)
	}
}
