package events

import (
	"encoding/json"
	"fmt"
)

// EventFactory creates a new zero-value event of a specific type.
type EventFactory func() Event

// Registry maps event types to their factories for deserialization.
type Registry struct {
	factories map[string]EventFactory
}

// NewRegistry creates a new event registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]EventFactory),
	}
}

// Register adds an event type to the registry.
func (r *Registry) Register(eventType string, factory EventFactory) {
	r.factories[eventType] = factory
}

// Unmarshal deserializes a raw event into its concrete type.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	factory, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}

	event := factory()
	if err := json.Unmarshal([]byte(raw.Payload), event); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}

	return event, nil
}

// DefaultRegistry returns a registry with all persisted event types registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Library
	r.Register(EventCourseImported, func() Event { return &CourseImported{} })
	r.Register(EventFolderPicked, func() Event { return &FolderPicked{} })

	// Playback
	r.Register(EventSourceResolved, func() Event { return &SourceResolved{} })
	r.Register(EventFolderAccessNeeded, func() Event { return &FolderAccessNeeded{} })
	r.Register(EventPlaybackFailed, func() Event { return &PlaybackFailed{} })
	r.Register(EventPlaybackStarted, func() Event { return &PlaybackStarted{} })
	r.Register(EventPlaybackPaused, func() Event { return &PlaybackPaused{} })
	r.Register(EventProgressSaved, func() Event { return &ProgressSaved{} })
	r.Register(EventVideoCompleted, func() Event { return &VideoCompleted{} })
	r.Register(EventAdvanceRequested, func() Event { return &AdvanceRequested{} })

	// Transcription
	r.Register(EventTranscriptionStarted, func() Event { return &TranscriptionStarted{} })
	r.Register(EventTranscriptionStep, func() Event { return &TranscriptionProgressed{} })
	r.Register(EventTranscriptionDone, func() Event { return &TranscriptionCompleted{} })
	r.Register(EventTranscriptionFailed, func() Event { return &TranscriptionFailed{} })

	return r
}
