package v1

import (
	"context"
	"errors"

	"github.com/vmunix/reprise/internal/access"
	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/media"
	"github.com/vmunix/reprise/internal/player"
	"github.com/vmunix/reprise/internal/transcribe"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

//go:generate mockgen -source=deps.go -destination=mocks/deps.go -package=mocks

// Transcriber turns PCM audio into caption chunks.
// Messages arrive on the returned channel until a terminal one closes it.
type Transcriber interface {
	Submit(ctx context.Context, samples []float32) (string, <-chan transcribe.Message, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Library *library.Store
	Player  *player.Controller
	Session *access.Session
	Media   *media.Registry

	// Optional dependencies (nil if not configured)
	Transcriber Transcriber
	Bus         *events.Bus      // Optional: event publishing and streaming
	EventLog    *events.EventLog // Optional: for event audit log
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Library == nil {
		return errors.New("library store is required")
	}
	if d.Player == nil {
		return errors.New("player controller is required")
	}
	if d.Session == nil {
		return errors.New("access session is required")
	}
	if d.Media == nil {
		return errors.New("media registry is required")
	}
	return nil
}
