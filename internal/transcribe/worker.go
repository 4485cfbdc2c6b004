package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vmunix/reprise/internal/metrics"
)

//go:generate mockgen -source=worker.go -destination=mocks/worker.go -package=mocks

// ProgressFunc receives stage updates while an engine runs.
type ProgressFunc func(stage string, progress float64, message string)

// Engine turns audio samples into a transcript.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32, progress ProgressFunc) (Result, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, samples []float32, progress ProgressFunc) (Result, error)

// Transcribe calls f.
func (f EngineFunc) Transcribe(ctx context.Context, samples []float32, progress ProgressFunc) (Result, error) {
	return f(ctx, samples, progress)
}

const (
	defaultQueueSize = 4
	// streamBuffer bounds progress messages held for a slow reader. One more
	// slot is always kept free for the terminal message.
	streamBuffer = 32
)

type job struct {
	id      string
	ctx     context.Context
	samples []float32
	out     chan Message
}

// Worker runs one request at a time on its own goroutine.
type Worker struct {
	engine Engine
	log    *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan job

	cancel context.CancelFunc
	ctx    context.Context
	done   chan struct{}
}

// Option configures a Worker.
type Option func(*Worker)

// WithQueueSize sets how many requests may wait behind the running one.
func WithQueueSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.queue = make(chan job, n)
		}
	}
}

// NewWorker starts a worker around engine.
func NewWorker(engine Engine, log *slog.Logger, opts ...Option) *Worker {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		engine: engine,
		log:    log.With("component", "transcribe"),
		queue:  make(chan job, defaultQueueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Submit queues samples for transcription. The returned channel yields
// progress messages and then exactly one result or error message, after
// which it is closed. Cancelling ctx ends the request with an error message.
func (w *Worker) Submit(ctx context.Context, samples []float32) (string, <-chan Message, error) {
	if len(samples) == 0 {
		return "", nil, ErrNoAudio
	}
	j := job{id: uuid.NewString(), ctx: ctx, samples: samples, out: make(chan Message, streamBuffer+1)}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", nil, ErrClosed
	}
	select {
	case w.queue <- j:
	default:
		return "", nil, ErrQueueFull
	}
	w.log.Debug("transcription queued", "request_id", j.id, "samples", len(samples))
	return j.id, j.out, nil
}

func (w *Worker) run() {
	defer close(w.done)
	for j := range w.queue {
		w.process(j)
	}
}

func (w *Worker) process(j job) {
	defer close(j.out)

	ctx, cancel := context.WithCancel(WithRequestID(j.ctx, j.id))
	defer cancel()
	stop := context.AfterFunc(w.ctx, cancel)
	defer stop()

	if err := ctx.Err(); err != nil {
		w.finish(j, Result{}, err)
		return
	}

	progress := func(stage string, p float64, message string) {
		// Only this goroutine sends, so the length check cannot race.
		if len(j.out) >= cap(j.out)-1 {
			return
		}
		j.out <- Message{Type: TypeProgress, RequestID: j.id, Stage: stage, Progress: p, Message: message}
	}
	res, err := w.engine.Transcribe(ctx, j.samples, progress)
	w.finish(j, res, err)
}

func (w *Worker) finish(j job, res Result, err error) {
	metrics.IncTranscription(err)
	if err != nil {
		var engineErr *Error
		msg := err.Error()
		if errors.As(err, &engineErr) {
			msg = engineErr.Message
		}
		w.log.Warn("transcription failed", "request_id", j.id, "error", err)
		j.out <- Message{Type: TypeError, RequestID: j.id, Message: msg}
		return
	}
	w.log.Info("transcription finished", "request_id", j.id, "chunks", len(res.Chunks))
	j.out <- Message{Type: TypeResult, RequestID: j.id, Text: res.Text, Chunks: res.Chunks}
}

// Close cancels the running request, fails queued ones and waits for the
// worker goroutine to exit.
func (w *Worker) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.cancel()
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
	return nil
}
