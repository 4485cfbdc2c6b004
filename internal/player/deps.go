package player

import (
	"context"
	"errors"

	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/resolve"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

//go:generate mockgen -source=deps.go -destination=mocks/deps.go -package=mocks

// Resolver finds a playable source for a video.
type Resolver interface {
	Resolve(ctx context.Context, v *library.Video, courseID int64) (resolve.Source, error)
}

// ProgressStore persists watch position and completion.
type ProgressStore interface {
	UpdateVideoProgress(id int64, currentTime, duration float64) error
	MarkVideoComplete(id int64, completed bool) error
}

// Playlist finds the video after the given one in its course.
type Playlist interface {
	NextVideo(videoID int64) (*library.Video, error)
}

// Transport drives the media element that renders playback. The controller
// calls it while holding its lock, so implementations must not call back
// into the controller synchronously.
type Transport interface {
	Play()
	Pause()
	Seek(t float64)
	SetRate(rate float64)
	SetVolume(volume float64, muted bool)
}

// Publisher receives controller events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Deps contains the controller's collaborators.
// Required dependencies must be non-nil; optional dependencies may be nil.
type Deps struct {
	// Required dependencies
	Resolver Resolver
	Store    ProgressStore

	// Optional dependencies
	Playlist  Playlist  // nil disables auto-advance
	Transport Transport // nil drops transport commands
	Bus       Publisher
	Clock     Clock // defaults to the wall clock
}

// Validate checks that all required dependencies are provided.
func (d Deps) Validate() error {
	if d.Resolver == nil {
		return errors.New("resolver is required")
	}
	if d.Store == nil {
		return errors.New("progress store is required")
	}
	return nil
}

type nopTransport struct{}

func (nopTransport) Play()                   {}
func (nopTransport) Pause()                  {}
func (nopTransport) Seek(float64)            {}
func (nopTransport) SetRate(float64)         {}
func (nopTransport) SetVolume(float64, bool) {}
