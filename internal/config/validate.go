package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if c.Server.PublicURL != "" {
		if u, err := url.Parse(c.Server.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("server.public_url: must be an absolute URL, got %q", c.Server.PublicURL))
		}
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	p := c.Playback
	if p.CompletionThreshold < 1 || p.CompletionThreshold > 100 {
		errs = append(errs, fmt.Sprintf("playback.completion_threshold: must be between 1 and 100, got %d", p.CompletionThreshold))
	}
	if p.ProgressInterval.Duration < time.Second {
		errs = append(errs, fmt.Sprintf("playback.progress_interval: must be at least 1s, got %s", p.ProgressInterval))
	}

	if c.Transcription.Enabled && c.Transcription.Command == "" {
		errs = append(errs, "transcription.command: required when transcription is enabled")
	}
	if c.Transcription.QueueSize < 0 {
		errs = append(errs, "transcription.queue_size: must not be negative")
	}

	if c.Events.Retention.Duration < 0 {
		errs = append(errs, "events.retention: must not be negative")
	}

	return errs
}

// Warnings reports non-fatal problems such as library roots that do not exist.
func (c *Config) Warnings() []string {
	var warns []string
	for _, root := range c.Library.Roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			warns = append(warns, fmt.Sprintf("library.roots: directory %q does not exist", root))
		}
	}
	if dir := c.Captions.ExportDir; dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			warns = append(warns, fmt.Sprintf("captions.export_dir: directory %q does not exist", dir))
		}
	}
	return warns
}
