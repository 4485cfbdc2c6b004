// Package server runs the daemon's long-lived components.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config for the daemon runner.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// EventRetention is how long persisted events are kept. Zero keeps them forever.
	EventRetention time.Duration
	PruneInterval  time.Duration
}

// Watcher reloads configuration until its context ends.
type Watcher interface {
	Run(ctx context.Context) error
}

// Pruner deletes events that occurred before a cutoff.
type Pruner interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

// EventHandler consumes bus events until its context ends.
type EventHandler interface {
	Name() string
	Start(ctx context.Context) error
}

// Runner manages the HTTP server, the config watcher, event handlers and
// event pruning.
type Runner struct {
	handler  http.Handler
	watcher  Watcher
	pruner   Pruner
	handlers []EventHandler
	config   Config
	logger   *slog.Logger
}

// NewRunner creates a new runner serving handler.
func NewRunner(handler http.Handler, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Hour
	}
	return &Runner{
		handler: handler,
		config:  cfg,
		logger:  logger.With("component", "runner"),
	}
}

// SetWatcher configures the config file watcher.
func (r *Runner) SetWatcher(w Watcher) {
	r.watcher = w
}

// SetPruner configures event pruning.
func (r *Runner) SetPruner(p Pruner) {
	r.pruner = p
}

// AddHandler registers an event handler to run alongside the server.
func (r *Runner) AddHandler(h EventHandler) {
	r.handlers = append(r.handlers, h)
}

// Run listens on the configured address and serves until the context is
// canceled or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve runs all components on ln. It blocks until the context is canceled
// or a component fails; a clean shutdown returns nil.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Long-lived streams end when the runner stops.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		r.logger.Info("http server stopped")
		return nil
	})

	if r.watcher != nil {
		g.Go(func() error {
			if err := r.watcher.Run(ctx); err != nil {
				return fmt.Errorf("config watcher: %w", err)
			}
			return nil
		})
	}

	for _, h := range r.handlers {
		g.Go(func() error {
			r.logger.Debug("starting handler", "handler", h.Name())
			if err := h.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("handler %s: %w", h.Name(), err)
			}
			return nil
		})
	}

	if r.pruner != nil && r.config.EventRetention > 0 {
		g.Go(func() error {
			r.pruneLoop(ctx)
			return nil
		})
	}

	return g.Wait()
}

// pruneLoop prunes once at start and then every PruneInterval.
func (r *Runner) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(r.config.PruneInterval)
	defer ticker.Stop()

	for {
		r.prune()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) prune() {
	cutoff := time.Now().Add(-r.config.EventRetention)
	n, err := r.pruner.PruneBefore(cutoff)
	if err != nil {
		r.logger.Warn("event pruning failed", "error", err)
		return
	}
	if n > 0 {
		r.logger.Info("pruned events", "count", n, "before", cutoff.Format(time.RFC3339))
	}
}
