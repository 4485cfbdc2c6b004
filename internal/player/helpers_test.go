package player

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/media"
	"github.com/vmunix/reprise/internal/resolve"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	done    bool
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, running due callbacks in time order on the
// calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due *fakeTimer
		for _, t := range c.timers {
			if t.done || t.stopped || t.at.After(target) {
				continue
			}
			if due == nil || t.at.Before(due.at) {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.at
		due.done = true
		c.mu.Unlock()
		due.fn()
	}
}

// Pending returns the number of armed timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done && !t.stopped {
			n++
		}
	}
	return n
}

type savedProgress struct {
	VideoID     int64
	CurrentTime float64
	Duration    float64
}

type fakeStore struct {
	mu        sync.Mutex
	saves     []savedProgress
	completes []int64
	err       error
}

func (s *fakeStore) UpdateVideoProgress(id int64, currentTime, duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, savedProgress{id, currentTime, duration})
	return nil
}

func (s *fakeStore) MarkVideoComplete(id int64, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if completed {
		s.completes = append(s.completes, id)
	}
	return nil
}

func (s *fakeStore) Saves() []savedProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]savedProgress(nil), s.saves...)
}

func (s *fakeStore) Completes() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.completes...)
}

// fakeTransport records commands as strings.
type fakeTransport struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTransport) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeTransport) Play()                       { f.record("play") }
func (f *fakeTransport) Pause()                      { f.record("pause") }
func (f *fakeTransport) Seek(t float64)              { f.record("seek %g", t) }
func (f *fakeTransport) SetRate(r float64)           { f.record("rate %g", r) }
func (f *fakeTransport) SetVolume(v float64, m bool) { f.record("volume %g %t", v, m) }

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTransport) Has(call string) bool {
	for _, c := range f.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

type resolverFunc func(ctx context.Context, v *library.Video, courseID int64) (resolve.Source, error)

func (f resolverFunc) Resolve(ctx context.Context, v *library.Video, courseID int64) (resolve.Source, error) {
	return f(ctx, v, courseID)
}

type playlistFunc func(videoID int64) (*library.Video, error)

func (f playlistFunc) NextVideo(videoID int64) (*library.Video, error) { return f(videoID) }

type memBlob string

func (b memBlob) Name() string       { return string(b) }
func (b memBlob) ModTime() time.Time { return time.Time{} }
func (b memBlob) Open() (io.ReadSeekCloser, error) {
	return nopReadSeekCloser{strings.NewReader(string(b))}, nil
}

type nopReadSeekCloser struct{ io.ReadSeeker }

func (nopReadSeekCloser) Close() error { return nil }

type harness struct {
	c         *Controller
	clock     *fakeClock
	store     *fakeStore
	transport *fakeTransport
	leases    *media.Registry
}

func newHarness(t *testing.T, r Resolver, configure ...func(*Deps, *Settings)) *harness {
	t.Helper()
	h := &harness{
		clock:     newFakeClock(),
		store:     &fakeStore{},
		transport: &fakeTransport{},
		leases:    media.NewRegistry("http://test/media", testLogger()),
	}
	if r == nil {
		r = h.localResolver()
	}
	deps := Deps{Resolver: r, Store: h.store, Transport: h.transport, Clock: h.clock}
	settings := DefaultSettings()
	for _, fn := range configure {
		fn(&deps, &settings)
	}
	c, err := New(deps, settings, testLogger())
	require.NoError(t, err)
	h.c = c
	t.Cleanup(func() { _ = c.Close() })
	return h
}

// localResolver resolves every video to a fresh local lease.
func (h *harness) localResolver() Resolver {
	return resolverFunc(func(_ context.Context, v *library.Video, _ int64) (resolve.Source, error) {
		name := fmt.Sprintf("v%d.mp4", v.ID)
		return resolve.Local{Lease: h.leases.Register(memBlob(name)), Name: name, Origin: resolve.OriginIndex}, nil
	})
}

func (h *harness) waitPhase(t *testing.T, want Phase) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = h.c.Snapshot()
		return snap.Phase == want
	}, time.Second, time.Millisecond, "phase never became %s", want)
	return snap
}

// loadReady loads v, waits for Ready and reports duration d.
func (h *harness) loadReady(t *testing.T, v *library.Video, d float64) {
	t.Helper()
	h.c.Load(v, v.CourseID)
	h.waitPhase(t, PhaseReady)
	if d > 0 {
		h.c.DurationChange(d)
	}
}

func sortedIDs(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
