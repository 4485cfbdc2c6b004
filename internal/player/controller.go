// Package player implements the playback session controller: the state
// machine that loads a video through the resolver, tracks time, speed and
// captions, saves progress and marks completion.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/vmunix/reprise/internal/captions"
	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/metrics"
	"github.com/vmunix/reprise/internal/resolve"
)

// Controller owns the playback session of one viewer. All methods are safe
// for concurrent use; a single mutex serialises state changes.
type Controller struct {
	resolver  Resolver
	playlist  Playlist
	transport Transport
	bus       Publisher
	clock     Clock
	log       *slog.Logger
	writer    *progressWriter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	settings Settings
	closed   bool
	outbox   []events.Event

	// gen increments on every load. Late resolutions and timer callbacks
	// carrying an older generation are discarded.
	gen       uint64
	video     *library.Video
	courseID  int64
	phase     Phase
	source    resolve.Source
	failure   *Failure
	folder    string
	retries   int
	state     State
	track     *captions.Track
	completed bool
	// awaitingDuration defers the resume decision until the media reports
	// its own duration.
	awaitingDuration bool
	next             *library.Video
	cancelResolve    context.CancelFunc

	tickSeq      uint64
	tick         Timer
	countdownSeq uint64
	countdown    Timer
	boostSeq     uint64
	boost        Timer
	boostHeld    bool

	// Preferences carried across loads.
	volume      float64
	muted       bool
	captionsOn  bool
	preferSpeed float64
}

// New creates a controller. It fails if a required dependency is missing.
func New(deps Deps, settings Settings, log *slog.Logger) (*Controller, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "player")
	if deps.Clock == nil {
		deps.Clock = WallClock()
	}
	if deps.Transport == nil {
		deps.Transport = nopTransport{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		resolver:    deps.Resolver,
		playlist:    deps.Playlist,
		transport:   deps.Transport,
		bus:         deps.Bus,
		clock:       deps.Clock,
		log:         log,
		writer:      newProgressWriter(deps.Store, deps.Bus, deps.Clock, log),
		ctx:         ctx,
		cancel:      cancel,
		settings:    settings.normalized(),
		phase:       PhaseIdle,
		track:       captions.NewTrack(nil),
		volume:      1,
		captionsOn:  true,
		preferSpeed: 1,
	}, nil
}

// do runs fn under the lock and publishes the events it queued afterwards,
// so the bus never runs while the controller is locked.
func (c *Controller) do(fn func()) {
	c.mu.Lock()
	fn()
	out := c.outbox
	c.outbox = nil
	c.mu.Unlock()

	if c.bus == nil {
		return
	}
	for _, e := range out {
		if err := c.bus.Publish(context.Background(), e); err != nil {
			c.log.Warn("failed to publish event", "type", e.EventType(), "error", err)
		}
	}
}

func (c *Controller) emit(e events.Event) {
	c.outbox = append(c.outbox, e)
}

func (c *Controller) base(eventType string) events.BaseEvent {
	var id int64
	if c.video != nil {
		id = c.video.ID
	}
	return events.NewBaseEventAt(eventType, events.EntityVideo, id, c.clock.Now())
}

// Load switches to v. The prior source is released and all timers stop.
// Resolution runs in the background; Snapshot reports progress.
func (c *Controller) Load(v *library.Video, courseID int64) {
	if v == nil {
		return
	}
	c.do(func() {
		if c.closed {
			return
		}
		c.retries = 0
		c.startLoad(v, courseID)
	})
}

// Retry reloads the current video from the error phase. It reports false
// when there is nothing to retry or the failure is not retryable.
func (c *Controller) Retry() bool {
	var ok bool
	c.do(func() {
		if c.closed || c.phase != PhaseError || c.video == nil {
			return
		}
		if c.failure != nil && !c.failure.Retryable {
			return
		}
		c.retries++
		ok = true
		c.startLoad(c.video, c.courseID)
	})
	return ok
}

// FolderSelected reloads the current video after the user picked a folder.
// It applies while waiting for folder access, or after a not-found error.
func (c *Controller) FolderSelected() bool {
	var ok bool
	c.do(func() {
		if c.closed || c.video == nil {
			return
		}
		notFound := c.phase == PhaseError && c.failure != nil && c.failure.Kind == FailureNotFound
		if c.phase != PhaseNeedsFolderAccess && !notFound {
			return
		}
		ok = true
		c.startLoad(c.video, c.courseID)
	})
	return ok
}

func (c *Controller) startLoad(v *library.Video, courseID int64) {
	c.teardown()

	c.gen++
	gen := c.gen
	video := *v
	c.video = &video
	c.courseID = courseID
	c.phase = PhaseLoading
	c.failure = nil
	c.folder = ""
	c.next = nil
	c.completed = video.IsCompleted
	c.awaitingDuration = false
	c.state = State{
		Volume:          c.volume,
		Muted:           c.muted,
		Speed:           c.preferSpeed,
		CaptionsEnabled: c.captionsOn,
	}
	c.track.Set(video.Captions)

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelResolve = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		src, err := c.resolver.Resolve(ctx, &video, courseID)
		c.do(func() { c.applyResolution(gen, video.ID, src, err) })
	}()
	c.log.Debug("loading video", "video_id", video.ID, "course_id", courseID, "generation", gen)
}

// teardown stops timers, saves the outgoing position and releases the
// active source.
func (c *Controller) teardown() {
	c.stopTick()
	c.stopCountdown()
	c.stopBoost()
	if c.cancelResolve != nil {
		c.cancelResolve()
		c.cancelResolve = nil
	}

	if c.video != nil && c.phase == PhaseReady && c.state.CurrentTime > 0 {
		c.writer.save(c.video.ID, c.state.CurrentTime, c.state.Duration)
	}
	c.releaseSource()
}

func (c *Controller) releaseSource() {
	if c.source == nil {
		return
	}
	if err := resolve.Release(c.source); err != nil {
		c.log.Warn("failed to release source", "error", err)
	}
	c.source = nil
}

func (c *Controller) applyResolution(gen uint64, videoID int64, src resolve.Source, err error) {
	if c.closed || gen != c.gen || c.video == nil || c.video.ID != videoID {
		if err == nil {
			if rerr := resolve.Release(src); rerr != nil {
				c.log.Warn("failed to release stale source", "error", rerr)
			}
		}
		c.log.Debug("discarding stale resolution", "video_id", videoID, "generation", gen)
		return
	}
	c.cancelResolve = nil

	if err != nil {
		c.fail(Classify(err), err.Error())
		return
	}

	switch s := src.(type) {
	case resolve.NeedsFolderAccess:
		c.phase = PhaseNeedsFolderAccess
		c.folder = s.Folder
		c.emit(&events.FolderAccessNeeded{
			BaseEvent: c.base(events.EventFolderAccessNeeded),
			CourseID:  c.courseID,
			Folder:    s.Folder,
		})
	case resolve.Remote:
		c.source = s
		c.phase = PhaseReady
		c.state.Duration = c.video.Duration
		c.emitResolved(s.Kind(), string(s.Provider))
		if c.state.Duration > 0 {
			c.decideResume()
		} else {
			c.awaitingDuration = true
		}
	case resolve.Local:
		c.source = s
		c.phase = PhaseReady
		c.awaitingDuration = true
		c.emitResolved(s.Kind(), string(s.Origin))
	default:
		c.fail(FailureUnknown, fmt.Sprintf("unexpected source %T", src))
	}
}

func (c *Controller) emitResolved(kind, origin string) {
	c.emit(&events.SourceResolved{
		BaseEvent: c.base(events.EventSourceResolved),
		CourseID:  c.courseID,
		Kind:      kind,
		Origin:    origin,
	})
}

func (c *Controller) fail(kind FailureKind, msg string) {
	c.stopTick()
	c.stopCountdown()
	c.stopBoost()
	c.releaseSource()
	c.state.Playing = false
	c.phase = PhaseError
	c.failure = &Failure{Kind: kind, Message: msg, Retryable: retryable(kind, c.retries)}
	metrics.IncPlaybackError(string(kind))
	c.log.Info("playback failed", "video_id", c.video.ID, "kind", kind, "error", msg)
	c.emit(&events.PlaybackFailed{
		BaseEvent: c.base(events.EventPlaybackFailed),
		Kind:      string(kind),
		Message:   msg,
	})
}

// decideResume offers the stored position once the duration is known.
func (c *Controller) decideResume() {
	c.awaitingDuration = false
	if !c.settings.ResumeOnReopen || c.state.CurrentTime > 0 {
		return
	}
	at, ok := resumePosition(c.video.LastPosition, c.video.WatchProgress, c.state.Duration)
	if !ok {
		return
	}
	c.state.ResumePending = true
	c.state.ResumeAt = at
}

func (c *Controller) ready() bool {
	return !c.closed && c.phase == PhaseReady
}

// Play starts playback. A pending resume prompt is dismissed and playback
// starts from the current position.
func (c *Controller) Play() {
	c.do(c.play)
}

func (c *Controller) play() {
	if !c.ready() {
		return
	}
	c.state.ResumePending = false
	if c.state.Countdown > 0 {
		c.stopCountdown()
	}
	if c.state.Playing {
		return
	}
	if c.state.Duration > 0 && c.state.CurrentTime >= c.state.Duration {
		c.state.CurrentTime = 0
		c.transport.Seek(0)
	}
	c.state.Playing = true
	c.transport.Play()
	c.startTick()
	c.emit(&events.PlaybackStarted{BaseEvent: c.base(events.EventPlaybackStarted), Position: c.state.CurrentTime})
}

// Pause stops playback and saves progress immediately.
func (c *Controller) Pause() {
	c.do(c.pause)
}

func (c *Controller) pause() {
	if !c.ready() || !c.state.Playing {
		return
	}
	c.state.Playing = false
	c.stopTick()
	c.stopBoost()
	c.transport.Pause()
	c.checkCompletion()
	c.saveProgress()
	c.emit(&events.PlaybackPaused{BaseEvent: c.base(events.EventPlaybackPaused), Position: c.state.CurrentTime})
}

// TogglePlay plays when paused and pauses when playing.
func (c *Controller) TogglePlay() {
	c.do(c.togglePlay)
}

func (c *Controller) togglePlay() {
	if c.state.Playing {
		c.pause()
	} else {
		c.play()
	}
}

// TimeUpdate records the media's reported position.
func (c *Controller) TimeUpdate(t float64) {
	c.do(func() {
		if !c.ready() {
			return
		}
		c.state.CurrentTime = ClampSeek(t, c.state.Duration)
	})
}

// DurationChange records the media's reported duration. For local media this
// is when the resume decision is made.
func (c *Controller) DurationChange(d float64) {
	c.do(func() {
		if !c.ready() || !knownDuration(d) {
			return
		}
		c.state.Duration = d
		c.state.CurrentTime = ClampSeek(c.state.CurrentTime, d)
		if c.awaitingDuration {
			c.decideResume()
		}
	})
}

// Ended handles the media reaching its end.
func (c *Controller) Ended() {
	c.do(func() {
		if !c.ready() {
			return
		}
		c.stopTick()
		c.stopBoost()
		c.state.Playing = false
		if c.state.Duration > 0 {
			c.state.CurrentTime = c.state.Duration
		}
		c.checkCompletion()
		c.saveProgress()

		if c.settings.AutoAdvance && c.playlist != nil {
			c.fetchNext(c.gen, c.video.ID)
		}
	})
}

func (c *Controller) fetchNext(gen uint64, videoID int64) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		next, err := c.playlist.NextVideo(videoID)
		c.do(func() { c.beginCountdown(gen, next, err) })
	}()
}

func (c *Controller) beginCountdown(gen uint64, next *library.Video, err error) {
	if !c.ready() || gen != c.gen || c.state.Playing {
		return
	}
	if err != nil {
		if !library.IsEndOfCourse(err) {
			c.log.Warn("failed to find next video", "video_id", c.video.ID, "error", err)
		}
		return
	}
	c.next = next
	c.state.Countdown = countdownSteps
	c.armCountdown()
}

func (c *Controller) armCountdown() {
	c.countdownSeq++
	seq, gen := c.countdownSeq, c.gen
	c.countdown = c.clock.AfterFunc(countdownTick, func() {
		c.do(func() { c.onCountdown(gen, seq) })
	})
}

func (c *Controller) onCountdown(gen, seq uint64) {
	if !c.ready() || gen != c.gen || seq != c.countdownSeq || c.next == nil {
		return
	}
	c.state.Countdown--
	if c.state.Countdown > 0 {
		c.armCountdown()
		return
	}

	next := c.next
	c.emit(&events.AdvanceRequested{BaseEvent: c.base(events.EventAdvanceRequested), NextVideoID: next.ID})
	c.log.Info("advancing to next video", "video_id", c.video.ID, "next_video_id", next.ID)
	c.retries = 0
	c.startLoad(next, next.CourseID)
}

// CancelAdvance stops the auto-advance countdown, staying on the finished video.
func (c *Controller) CancelAdvance() {
	c.do(func() {
		if !c.ready() || c.state.Countdown == 0 {
			return
		}
		c.stopCountdown()
		if c.state.Duration > 0 {
			c.state.CurrentTime = c.state.Duration
		}
	})
}

func (c *Controller) stopCountdown() {
	c.countdownSeq++
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	c.state.Countdown = 0
	c.next = nil
}

// MediaError handles a decode or transport failure reported by the media.
// Local sources fail as unsupported format, remote ones as network errors.
func (c *Controller) MediaError(message string) {
	c.do(func() {
		if !c.ready() {
			return
		}
		kind := FailureUnsupportedFormat
		if _, ok := c.source.(resolve.Remote); ok {
			kind = FailureNetwork
		}
		c.fail(kind, message)
	})
}

func (c *Controller) startTick() {
	c.stopTick()
	c.armTick()
}

func (c *Controller) armTick() {
	c.tickSeq++
	seq, gen := c.tickSeq, c.gen
	c.tick = c.clock.AfterFunc(c.settings.ProgressInterval, func() {
		c.do(func() { c.onTick(gen, seq) })
	})
}

func (c *Controller) onTick(gen, seq uint64) {
	if !c.ready() || gen != c.gen || seq != c.tickSeq || !c.state.Playing {
		return
	}
	c.checkCompletion()
	c.saveProgress()
	c.armTick()
}

func (c *Controller) stopTick() {
	c.tickSeq++
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
}

func (c *Controller) saveProgress() {
	if c.video == nil || c.state.CurrentTime <= 0 {
		return
	}
	c.writer.save(c.video.ID, c.state.CurrentTime, c.state.Duration)
}

// checkCompletion marks the video complete the first time the position
// crosses the threshold.
func (c *Controller) checkCompletion() {
	if c.completed || !knownDuration(c.state.Duration) {
		return
	}
	if ratio := c.state.CurrentTime / c.state.Duration; math.IsNaN(ratio) || ratio < c.settings.CompletionThreshold {
		return
	}
	c.completed = true
	c.writer.complete(c.video.ID)
	metrics.IncCompletion()
	c.log.Info("video completed", "video_id", c.video.ID)
	c.emit(&events.VideoCompleted{BaseEvent: c.base(events.EventVideoCompleted), CourseID: c.courseID})
}

// Seek moves to t seconds, clamped to the media's range.
func (c *Controller) Seek(t float64) {
	c.do(func() { c.seek(t) })
}

func (c *Controller) seek(t float64) {
	if !c.ready() {
		return
	}
	if c.state.Countdown > 0 {
		c.stopCountdown()
	}
	c.state.CurrentTime = ClampSeek(t, c.state.Duration)
	c.transport.Seek(c.state.CurrentTime)
}

// SeekBy moves delta seconds from the current position.
func (c *Controller) SeekBy(delta float64) {
	c.do(func() { c.seek(c.state.CurrentTime + delta) })
}

// SeekPercent jumps to digit*10% of the duration.
func (c *Controller) SeekPercent(digit int) {
	c.do(func() { c.seekPercent(digit) })
}

func (c *Controller) seekPercent(digit int) {
	if t, ok := PercentPosition(digit, c.state.Duration); ok {
		c.seek(t)
	}
}

// SetSpeed changes the playback rate. Rates outside Speeds are ignored and
// reported as false. While boosting, the new rate applies on release.
func (c *Controller) SetSpeed(rate float64) bool {
	var ok bool
	c.do(func() { ok = c.setSpeed(rate) })
	return ok
}

func (c *Controller) setSpeed(rate float64) bool {
	if !ValidSpeed(rate) {
		return false
	}
	c.state.Speed = rate
	c.preferSpeed = rate
	if c.ready() && !c.state.Boosting {
		c.transport.SetRate(rate)
	}
	return true
}

// BoostPress starts the boost hold. Boosting begins once the hold lasts
// BoostHold while playing.
func (c *Controller) BoostPress() {
	c.do(func() {
		if !c.ready() || !c.state.Playing || c.boostHeld {
			return
		}
		c.boostHeld = true
		c.boostSeq++
		seq, gen := c.boostSeq, c.gen
		c.boost = c.clock.AfterFunc(BoostHold, func() {
			c.do(func() { c.onBoost(gen, seq) })
		})
	})
}

func (c *Controller) onBoost(gen, seq uint64) {
	if !c.ready() || gen != c.gen || seq != c.boostSeq || !c.boostHeld || !c.state.Playing {
		return
	}
	c.state.Boosting = true
	c.transport.SetRate(BoostRate)
}

// BoostRelease ends the boost hold and reports whether boosting had begun.
// An early release changes nothing.
func (c *Controller) BoostRelease() bool {
	var boosted bool
	c.do(func() {
		if !c.boostHeld {
			return
		}
		boosted = c.state.Boosting
		c.stopBoost()
	})
	return boosted
}

func (c *Controller) stopBoost() {
	c.boostSeq++
	if c.boost != nil {
		c.boost.Stop()
		c.boost = nil
	}
	c.boostHeld = false
	if c.state.Boosting {
		c.state.Boosting = false
		if c.phase == PhaseReady {
			c.transport.SetRate(c.state.Speed)
		}
	}
}

// SetVolume sets the volume, clamped to [0, 1]. A positive volume unmutes.
func (c *Controller) SetVolume(v float64) {
	c.do(func() { c.setVolume(v) })
}

func (c *Controller) setVolume(v float64) {
	c.state.Volume = clampVolume(v)
	if c.state.Volume > 0 {
		c.state.Muted = false
	}
	c.volume, c.muted = c.state.Volume, c.state.Muted
	if c.ready() {
		c.transport.SetVolume(c.state.Volume, c.state.Muted)
	}
}

// ToggleMute flips the mute flag.
func (c *Controller) ToggleMute() {
	c.do(c.toggleMute)
}

func (c *Controller) toggleMute() {
	c.state.Muted = !c.state.Muted
	c.muted = c.state.Muted
	if c.ready() {
		c.transport.SetVolume(c.state.Volume, c.state.Muted)
	}
}

// ToggleCaptions flips caption display.
func (c *Controller) ToggleCaptions() {
	c.do(c.toggleCaptions)
}

func (c *Controller) toggleCaptions() {
	c.state.CaptionsEnabled = !c.state.CaptionsEnabled
	c.captionsOn = c.state.CaptionsEnabled
}

// SetCaptions replaces the caption chunks of the video being played.
// Chunks for any other video are ignored.
func (c *Controller) SetCaptions(videoID int64, chunks []captions.Chunk) {
	c.do(func() {
		if c.video == nil || c.video.ID != videoID {
			return
		}
		c.video.Captions = chunks
		c.track.Set(chunks)
	})
}

// AcceptResume seeks to the offered position and starts playback.
func (c *Controller) AcceptResume() {
	c.do(func() {
		if !c.ready() || !c.state.ResumePending {
			return
		}
		at := c.state.ResumeAt
		c.state.ResumePending = false
		c.seek(at)
		c.play()
	})
}

// DeclineResume starts playback from the beginning.
func (c *Controller) DeclineResume() {
	c.do(func() {
		if !c.ready() || !c.state.ResumePending {
			return
		}
		c.state.ResumePending = false
		c.seek(0)
		c.play()
	})
}

// UpdateSettings replaces the playback settings. A running progress tick
// picks up a new interval on its next run.
func (c *Controller) UpdateSettings(s Settings) {
	c.do(func() {
		c.settings = s.normalized()
		c.log.Debug("settings updated",
			"resume_on_reopen", c.settings.ResumeOnReopen,
			"completion_threshold", c.settings.CompletionThreshold,
			"auto_advance", c.settings.AutoAdvance)
	})
}

// Settings returns the current settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// HandleKey applies a keyboard shortcut and reports whether the key was
// handled. Keys use DOM key names ("ArrowLeft", " ", "k").
func (c *Controller) HandleKey(key string) bool {
	var handled bool
	c.do(func() { handled = c.handleKey(key) })
	return handled
}

func (c *Controller) handleKey(key string) bool {
	if !c.settings.KeyboardShortcuts || !c.ready() {
		return false
	}
	switch key {
	case " ", "k", "K":
		c.togglePlay()
	case "j", "J":
		c.seek(c.state.CurrentTime - 10)
	case "l", "L":
		c.seek(c.state.CurrentTime + 10)
	case "ArrowLeft":
		c.seek(c.state.CurrentTime - 5)
	case "ArrowRight":
		c.seek(c.state.CurrentTime + 5)
	case "ArrowUp":
		c.setVolume(c.state.Volume + volumeStep)
	case "ArrowDown":
		c.setVolume(c.state.Volume - volumeStep)
	case "m", "M":
		c.toggleMute()
	case "c", "C":
		c.toggleCaptions()
	case "<", ",":
		c.setSpeed(stepSpeed(c.state.Speed, -1))
	case ">", ".":
		c.setSpeed(stepSpeed(c.state.Speed, 1))
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			c.seekPercent(int(key[0] - '0'))
			return true
		}
		return false
	}
	return true
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase:       c.phase,
		View:        viewFor(c.phase, c.state),
		CourseID:    c.courseID,
		NeedsFolder: c.folder,
		State:       c.state,
		Completed:   c.completed,
	}
	if c.video != nil {
		snap.VideoID = c.video.ID
		snap.Title = c.video.Title
	}
	if c.source != nil {
		snap.SourceKind = c.source.Kind()
		snap.SourceURL = resolve.URL(c.source)
	}
	if c.failure != nil {
		f := *c.failure
		snap.Failure = &f
	}
	if c.next != nil {
		snap.NextVideoID = c.next.ID
	}
	if c.state.CaptionsEnabled {
		if seg, ok := c.track.Active(c.state.CurrentTime); ok {
			snap.Caption = seg.Text
		}
	}
	return snap
}

// Segments returns the caption segments of the current video.
func (c *Controller) Segments() []captions.Segment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track.Segments()
}

// Close stops all timers, saves the current position, releases the active
// source and waits for background work to finish.
func (c *Controller) Close() error {
	c.do(func() {
		if c.closed {
			return
		}
		c.teardown()
		c.closed = true
		c.cancel()
	})
	c.wg.Wait()
	c.writer.close()
	return nil
}
