package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"namedesk/internal/api"
	"namedesk/internal/bridge"
	"namedesk/internal/config"
	"namedesk/internal/infrastructure/logging"
	"namedesk/internal/sse"

	"golang.org/x/sync/errgroup"
)

// ServeOption configures RunHeadless
type ServeOption func(*serveOptions)

type serveOptions struct {
	listener net.Listener
	app      []Option
}

// WithListener serves on l instead of listening on the configured address
func WithListener(l net.Listener) ServeOption {
	return func(o *serveOptions) { o.listener = l }
}

// WithAppOptions passes options through to the hosted backend
func WithAppOptions(opts ...Option) ServeOption {
	return func(o *serveOptions) { o.app = append(o.app, opts...) }
}

// RunHeadless serves the backend over loopback HTTP until ctx is done or
// the process receives SIGINT/SIGTERM
func RunHeadless(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...ServeOption) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	var so serveOptions
	for _, opt := range opts {
		opt(&so)
	}
	o := buildOptions(cfg, so.app)

	bus := bridge.NewBus(logger)
	b := newBackend(cfg, o, bus, logger)
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("start backend: %w", err)
	}
	defer b.Close()

	broker := sse.NewBroker(bridge.EventProcessReady.String())
	defer broker.Close()
	for _, event := range bridge.EventsTo(bridge.ToUI) {
		name := event.String()
		sub := bus.On(event, func(args ...any) {
			broker.Publish(sse.Event{Name: name, Args: args})
		})
		defer bus.Off(sub)
	}

	router := api.NewRouter(api.Options{
		Invoker: b.Invoker(),
		Events:  bus,
		Stream:  broker,
		Health:  b.Health,
		Logger:  logger,
	})

	listener := so.listener
	if listener == nil {
		var err error
		listener, err = net.Listen("tcp", cfg.Server.Address)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Address, err)
		}
	}
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "address", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	b.AnnounceReady()

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", "signal", sig.String())
		case <-gCtx.Done():
			logger.Info("context cancelled, initiating shutdown")
		}

		// SSE handlers only return once the broker closes
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err.Error())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err.Error())
		return err
	}
	logger.Info("server stopped")
	return nil
}
