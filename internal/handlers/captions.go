package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmunix/reprise/internal/captions"
	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
)

// VideoGetter loads a video with its captions.
type VideoGetter interface {
	GetVideo(id int64) (*library.Video, error)
}

// CaptionExportConfig configures the caption export handler.
type CaptionExportConfig struct {
	Dir    string
	Format captions.Format // defaults to WebVTT
}

// CaptionExportHandler writes a sidecar caption file whenever a
// transcription completes.
type CaptionExportHandler struct {
	bus    *events.Bus
	videos VideoGetter
	config CaptionExportConfig
	logger *slog.Logger
}

// NewCaptionExportHandler creates a new caption export handler.
func NewCaptionExportHandler(bus *events.Bus, videos VideoGetter, config CaptionExportConfig, logger *slog.Logger) *CaptionExportHandler {
	if config.Format == "" {
		config.Format = captions.FormatVTT
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CaptionExportHandler{
		bus:    bus,
		videos: videos,
		config: config,
		logger: logger.With("component", "caption-export"),
	}
}

// Name returns the handler name.
func (h *CaptionExportHandler) Name() string {
	return "caption-export"
}

// Start exports captions for every completed transcription.
func (h *CaptionExportHandler) Start(ctx context.Context) error {
	return consume(ctx, h.bus, h.logger, func(e events.Event) error {
		tc, ok := e.(*events.TranscriptionCompleted)
		if !ok {
			return nil
		}
		if _, err := h.Export(tc.EntityID()); err != nil {
			return fmt.Errorf("request %s: %w", tc.RequestID, err)
		}
		return nil
	}, events.EventTranscriptionDone)
}

// Export writes the captions of one video and returns the file path.
func (h *CaptionExportHandler) Export(videoID int64) (string, error) {
	v, err := h.videos.GetVideo(videoID)
	if err != nil {
		return "", fmt.Errorf("load video %d: %w", videoID, err)
	}
	segments := captions.Group(v.Captions)
	if len(segments) == 0 {
		return "", fmt.Errorf("video %d has no captions", videoID)
	}

	if err := os.MkdirAll(h.config.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(h.config.Dir, v.BaseName()+"."+string(h.config.Format))
	if err := captions.ExportFile(path, segments); err != nil {
		return "", err
	}

	h.logger.Info("captions exported", "video_id", videoID, "path", path, "cues", len(segments))
	return path, nil
}
