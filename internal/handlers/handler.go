// Package handlers reacts to events published on the bus.
package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/reprise/internal/events"
)

// Handler processes events of specific types.
type Handler interface {
	// Start processes events until ctx is done or the bus closes.
	Start(ctx context.Context) error
	Name() string
}

// consume subscribes to eventTypes and calls fn for each event until ctx is
// done or the bus closes. A closed bus is a clean stop; fn errors are logged
// and do not end the loop.
func consume(ctx context.Context, bus *events.Bus, logger *slog.Logger, fn func(events.Event) error, eventTypes ...string) error {
	if len(eventTypes) == 0 {
		return nil
	}
	ch := bus.Subscribe(eventTypes[0], 16, eventTypes[1:]...)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if err := fn(e); err != nil {
				logger.Warn("event handling failed", "event", e.EventType(), "entity_id", e.EntityID(), "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
