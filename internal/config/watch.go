package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// Watcher holds the current configuration and reloads it when the file
// changes. A reload that fails to load or validate keeps the old config.
type Watcher struct {
	path     string
	log      *slog.Logger
	debounce time.Duration

	mu        sync.RWMutex
	current   *Config
	listeners []func(*Config)
}

// NewWatcher returns a watcher for path starting from initial.
func NewWatcher(path string, initial *Config, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		log:      log.With("component", "config"),
		debounce: reloadDebounce,
		current:  initial,
	}
}

// Current returns the active configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers fn to run after every successful reload.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Reload reads the file again and swaps it in if valid.
func (w *Watcher) Reload() error {
	cfg, err := Load(w.path)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			w.log.Error("config reload rejected", "path", w.path, "fields", cfgErr.Fields(), "missing", cfgErr.Missing)
		} else {
			w.log.Error("config reload failed", "path", w.path, "error", err)
		}
		return err
	}

	w.mu.Lock()
	w.current = cfg
	listeners := append(([]func(*Config))(nil), w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	w.log.Info("configuration reloaded", "path", w.path)
	return nil
}

// Run watches the config file until ctx is cancelled. The directory is
// watched so editors that replace the file by rename are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	w.log.Info("watching config file for changes", "path", w.path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("config file changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = w.Reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("config watcher error", "error", err)
		}
	}
}
