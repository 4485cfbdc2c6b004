package events

import (
	"context"
	"log/slog"
	"sync"
)

// subscription is one subscriber channel and the events it wants.
type subscription struct {
	ch     chan Event
	match  func(Event) bool
	filter string // for logging
}

// Bus is the central event bus for pub/sub. Delivery never blocks: a full
// subscriber misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	log    *EventLog // SQLite persistence (may be nil)
	logger *slog.Logger
	closed bool
}

// NewBus creates a new event bus.
// The EventLog is optional - pass nil to disable persistence.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		log:    log,
		logger: logger.With("component", "events"),
	}
}

// Publish sends an event to all matching subscribers and optionally persists it.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.log != nil && e.EventType() != EventPlayerCommand {
		if _, err := b.log.Append(e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "error", err)
			// Delivery matters more than persistence.
		}
	}

	// Sends never block, so delivery can hold the read lock against Close.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, s := range b.subs {
		if !s.match(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.logger.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID(),
				"subscription", s.filter)
		}
	}
	return nil
}

func (b *Bus) subscribe(filter string, bufferSize int, match func(Event) bool) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, &subscription{ch: ch, match: match, filter: filter})
	return ch
}

// Subscribe returns a channel for events of the given types.
func (b *Bus) Subscribe(eventType string, bufferSize int, more ...string) <-chan Event {
	types := map[string]bool{eventType: true}
	for _, t := range more {
		types[t] = true
	}
	return b.subscribe(eventType, bufferSize, func(e Event) bool { return types[e.EventType()] })
}

// SubscribeAll returns a channel for all events.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	return b.subscribe("*", bufferSize, func(Event) bool { return true })
}

// SubscribeEntity returns events for a specific entity.
func (b *Bus) SubscribeEntity(entityType string, entityID int64, bufferSize int) <-chan Event {
	return b.subscribe(entityType, bufferSize, func(e Event) bool {
		return e.EntityType() == entityType && e.EntityID() == entityID
	})
}

// Unsubscribe removes a subscription channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.ch == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}
