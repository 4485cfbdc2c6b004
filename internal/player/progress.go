package player

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/metrics"
)

type progressUpdate struct {
	videoID     int64
	currentTime float64
	duration    float64
}

// progressWriter persists progress off the caller's goroutine. Pending
// updates for the same video coalesce, so the latest position is always
// the last one written. Failures are logged and counted, never retried.
type progressWriter struct {
	store ProgressStore
	bus   Publisher
	clock Clock
	log   *slog.Logger

	mu        sync.Mutex
	pending   map[int64]progressUpdate
	order     []int64
	completes []int64
	closed    bool

	wake chan struct{}
	done chan struct{}
}

func newProgressWriter(store ProgressStore, bus Publisher, clock Clock, log *slog.Logger) *progressWriter {
	w := &progressWriter{
		store:   store,
		bus:     bus,
		clock:   clock,
		log:     log,
		pending: make(map[int64]progressUpdate),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// save queues a position write, replacing any pending one for the video.
func (w *progressWriter) save(videoID int64, currentTime, duration float64) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if _, ok := w.pending[videoID]; ok {
		metrics.IncProgressCoalesced()
	} else {
		w.order = append(w.order, videoID)
	}
	w.pending[videoID] = progressUpdate{videoID: videoID, currentTime: currentTime, duration: duration}
	w.signal()
	w.mu.Unlock()
}

// complete queues a completion mark.
func (w *progressWriter) complete(videoID int64) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.completes = append(w.completes, videoID)
	w.signal()
	w.mu.Unlock()
}

// signal wakes the writer. Callers hold mu so it cannot race close.
func (w *progressWriter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *progressWriter) run() {
	defer close(w.done)
	for range w.wake {
		w.drain()
	}
	w.drain()
}

func (w *progressWriter) take() ([]progressUpdate, []int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	updates := make([]progressUpdate, 0, len(w.order))
	for _, id := range w.order {
		updates = append(updates, w.pending[id])
	}
	completes := w.completes
	w.pending = make(map[int64]progressUpdate)
	w.order = nil
	w.completes = nil
	return updates, completes
}

func (w *progressWriter) drain() {
	for {
		updates, completes := w.take()
		if len(updates) == 0 && len(completes) == 0 {
			return
		}
		for _, u := range updates {
			err := w.store.UpdateVideoProgress(u.videoID, u.currentTime, u.duration)
			metrics.IncProgressWrite(err)
			if err != nil {
				w.log.Warn("failed to save progress", "video_id", u.videoID, "position", u.currentTime, "error", err)
				continue
			}
			w.publish(&events.ProgressSaved{
				BaseEvent: events.NewBaseEventAt(events.EventProgressSaved, events.EntityVideo, u.videoID, w.clock.Now()),
				Position:  u.currentTime,
				Duration:  u.duration,
			})
		}
		for _, id := range completes {
			if err := w.store.MarkVideoComplete(id, true); err != nil {
				w.log.Warn("failed to mark video complete", "video_id", id, "error", err)
			}
		}
	}
}

func (w *progressWriter) publish(e events.Event) {
	if w.bus == nil {
		return
	}
	if err := w.bus.Publish(context.Background(), e); err != nil {
		w.log.Warn("failed to publish event", "type", e.EventType(), "error", err)
	}
}

// close writes everything still pending and stops the writer.
func (w *progressWriter) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()

	<-w.done
}
