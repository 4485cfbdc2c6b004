package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/reprise/internal/access"
	v1 "github.com/vmunix/reprise/internal/api/v1"
	"github.com/vmunix/reprise/internal/config"
	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/handlers"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/media"
	"github.com/vmunix/reprise/internal/player"
	"github.com/vmunix/reprise/internal/resolve"
	"github.com/vmunix/reprise/internal/server"
	"github.com/vmunix/reprise/internal/transcribe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the playback daemon",
	Long: `Runs the HTTP daemon that drives playback for the browser UI.

Remembered course folders and the configured library roots are indexed at
start. Playback settings are reloaded when the config file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// settingsFromConfig maps the [playback] section onto controller settings.
func settingsFromConfig(p config.PlaybackConfig) player.Settings {
	return player.Settings{
		ResumeOnReopen:      p.ResumeOnReopen,
		CompletionThreshold: float64(p.CompletionThreshold) / 100,
		KeyboardShortcuts:   p.KeyboardShortcuts,
		AutoAdvance:         p.AutoAdvance,
		ProgressInterval:    p.ProgressInterval.Duration,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Server.LogLevel)
	for _, w := range cfg.Warnings() {
		logger.Warn("config warning", "warning", w)
	}

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === Stores ===
	store := library.NewStore(db)
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger)
	defer func() { _ = bus.Close() }()

	// === Access session ===
	session := access.NewSession(
		access.NewPermissionCache(store),
		access.StaticPrompter(cfg.Library.AutoGrant),
		access.WithLogger(logger.With("component", "access")),
	)
	defer session.Clear()
	indexed := restoreFolders(ctx, session, cfg.Library.Roots, logger)

	// === Playback ===
	registry := media.NewRegistry(cfg.Server.PublicURL+"/media", logger)
	ctrl, err := player.New(player.Deps{
		Resolver:  resolve.New(store, session, registry, logger),
		Store:     store,
		Playlist:  store,
		Transport: v1.NewTransport(bus, logger),
		Bus:       bus,
	}, settingsFromConfig(cfg.Playback), logger)
	if err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()
	if !cfg.Captions.Enabled {
		ctrl.ToggleCaptions()
	}

	// === Transcription (optional) ===
	var transcriber v1.Transcriber
	if cfg.Transcription.Enabled {
		engine := transcribe.NewExecEngine(cfg.Transcription.Command, cfg.Transcription.Args, logger)
		worker := transcribe.NewWorker(engine, logger, transcribe.WithQueueSize(cfg.Transcription.QueueSize))
		defer func() { _ = worker.Close() }()
		transcriber = worker
	}

	// === HTTP ===
	api, err := v1.New(v1.ServerDeps{
		Library:     store,
		Player:      ctrl,
		Session:     session,
		Media:       registry,
		Transcriber: transcriber,
		Bus:         bus,
		EventLog:    eventLog,
	}, v1.Config{Version: version}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = api.Close() }()

	watcher := config.NewWatcher(path, cfg, logger)
	watcher.OnChange(func(c *config.Config) {
		ctrl.UpdateSettings(settingsFromConfig(c.Playback))
	})

	runner := server.NewRunner(api.Handler(), server.Config{
		Addr:           cfg.Addr(),
		EventRetention: cfg.Events.Retention.Duration,
	}, logger)
	runner.SetWatcher(watcher)
	runner.SetPruner(eventLog)
	if cfg.Captions.ExportDir != "" {
		runner.AddHandler(handlers.NewCaptionExportHandler(bus, store, handlers.CaptionExportConfig{
			Dir: cfg.Captions.ExportDir,
		}, logger))
	}

	logger.Info("server starting",
		"addr", cfg.Addr(),
		"public_url", cfg.Server.PublicURL,
		"config", path,
		"database", cfg.Database.Path,
		"indexed_folders", indexed,
		"transcription", transcriber != nil,
		"log_level", cfg.Server.LogLevel,
	)

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// restoreFolders indexes remembered folders and every course folder below
// the library roots. Nothing is granted; direct handles still ask.
func restoreFolders(ctx context.Context, session *access.Session, roots []string, log *slog.Logger) int {
	restored, err := session.RestoreFolders(ctx)
	if err != nil {
		log.Warn("failed to restore folders", "error", err)
	}
	n := len(restored)

	for _, root := range roots {
		dirs, err := courseDirs(root)
		if err != nil {
			log.Warn("skipping library root", "root", root, "error", err)
			continue
		}
		for _, dir := range dirs {
			if session.Index.Has(filepath.Base(dir)) {
				continue
			}
			if _, err := session.IndexFolder(ctx, dir, ""); err != nil {
				log.Warn("failed to index course folder", "path", dir, "error", err)
				continue
			}
			n++
		}
	}
	return n
}

// courseDirs lists the immediate subdirectories of root. Each one is a
// course folder.
func courseDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && e.Name()[0] != '.' {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs, nil
}
