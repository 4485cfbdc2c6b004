package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/reprise/internal/captions"
	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/player/mocks"
	"github.com/vmunix/reprise/internal/resolve"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew_MissingDependency(t *testing.T) {
	_, err := New(Deps{Store: &fakeStore{}}, DefaultSettings(), nil)
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = New(Deps{Resolver: resolverFunc(nil)}, DefaultSettings(), nil)
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestController_LoadLocal(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, ViewLoading, h.c.Snapshot().View)
	h.c.Load(&library.Video{ID: 1, Title: "Intro"}, 3)

	snap := h.waitPhase(t, PhaseReady)
	assert.Equal(t, ViewReady, snap.View)
	assert.Equal(t, int64(1), snap.VideoID)
	assert.Equal(t, int64(3), snap.CourseID)
	assert.Equal(t, "local", snap.SourceKind)
	assert.Contains(t, snap.SourceURL, "http://test/media/")
	assert.Equal(t, 1.0, snap.State.Speed)
	assert.Equal(t, 1, h.leases.Active())
}

func TestController_LoadReleasesPriorLease(t *testing.T) {
	h := newHarness(t, nil)

	h.loadReady(t, &library.Video{ID: 1}, 0)
	first := h.c.Snapshot().SourceURL

	h.loadReady(t, &library.Video{ID: 2}, 0)
	snap := h.c.Snapshot()
	assert.Equal(t, int64(2), snap.VideoID)
	assert.NotEqual(t, first, snap.SourceURL)
	assert.Equal(t, 1, h.leases.Active())
}

func TestController_StaleResolutionDiscarded(t *testing.T) {
	gate := make(chan struct{})
	var h *harness
	h = newHarness(t, resolverFunc(func(_ context.Context, v *library.Video, _ int64) (resolve.Source, error) {
		if v.ID == 1 {
			<-gate
		}
		name := fmt.Sprintf("v%d.mp4", v.ID)
		return resolve.Local{Lease: h.leases.Register(memBlob(name)), Name: name}, nil
	}))

	h.c.Load(&library.Video{ID: 1}, 1)
	h.c.Load(&library.Video{ID: 2}, 1)
	h.waitPhase(t, PhaseReady)

	close(gate)
	require.Eventually(t, func() bool { return h.leases.Active() == 1 }, time.Second, time.Millisecond)

	// Give the stale result time to land; it must not replace video 2.
	require.Never(t, func() bool { return h.c.Snapshot().VideoID != 2 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, PhaseReady, h.c.Snapshot().Phase)
}

func TestController_ResumeLocalWaitsForDuration(t *testing.T) {
	h := newHarness(t, nil)

	h.loadReady(t, &library.Video{ID: 1, Duration: 600, LastPosition: 120}, 0)
	snap := h.c.Snapshot()
	assert.Equal(t, ViewReady, snap.View, "no prompt before the media reports its duration")
	assert.Zero(t, snap.State.Duration)

	h.c.DurationChange(600)
	snap = h.c.Snapshot()
	assert.Equal(t, ViewResumePrompt, snap.View)
	assert.InDelta(t, 120.0, snap.State.ResumeAt, 1e-9)

	h.c.AcceptResume()
	snap = h.c.Snapshot()
	assert.Equal(t, ViewReady, snap.View)
	assert.True(t, snap.State.Playing)
	assert.InDelta(t, 120.0, snap.State.CurrentTime, 1e-9)
	assert.Equal(t, []string{"seek 120", "play"}, h.transport.Calls())
}

func TestController_ResumeTransportOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	gomock.InOrder(
		transport.EXPECT().Seek(0.0),
		transport.EXPECT().Play(),
	)

	h := newHarness(t, nil, func(d *Deps, _ *Settings) { d.Transport = transport })
	h.loadReady(t, &library.Video{ID: 1, LastPosition: 30}, 300)
	require.Equal(t, ViewResumePrompt, h.c.Snapshot().View)

	h.c.DeclineResume()
	snap := h.c.Snapshot()
	assert.False(t, snap.State.ResumePending)
	assert.Zero(t, snap.State.CurrentTime)
}

func TestController_ResumeBounds(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		prompt   bool
	}{
		{"at 5s", 5, false},
		{"just past 5s", 5.5, true},
		{"inside tail guard", 590, false},
		{"before tail guard", 589, true},
		{"never watched", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.loadReady(t, &library.Video{ID: 1, LastPosition: tt.position}, 600)
			assert.Equal(t, tt.prompt, h.c.Snapshot().State.ResumePending)
		})
	}
}

func TestController_ResumeDisabled(t *testing.T) {
	h := newHarness(t, nil, func(_ *Deps, s *Settings) { s.ResumeOnReopen = false })
	h.loadReady(t, &library.Video{ID: 1, LastPosition: 120}, 600)
	assert.False(t, h.c.Snapshot().State.ResumePending)
}

func TestController_RemoteResumeFromFraction(t *testing.T) {
	remote := resolverFunc(func(context.Context, *library.Video, int64) (resolve.Source, error) {
		return resolve.Remote{URL: resolve.EmbedURL(resolve.ProviderYouTube, "abc123"), Provider: resolve.ProviderYouTube, EmbedID: "abc123"}, nil
	})

	t.Run("fraction converted with stored duration", func(t *testing.T) {
		h := newHarness(t, remote)
		h.loadReady(t, &library.Video{ID: 1, YouTubeID: "abc123", Duration: 1000, WatchProgress: 0.5}, 0)

		snap := h.c.Snapshot()
		assert.Equal(t, "remote", snap.SourceKind)
		assert.Equal(t, "https://www.youtube.com/embed/abc123", snap.SourceURL)
		assert.Equal(t, ViewResumePrompt, snap.View)
		assert.InDelta(t, 500.0, snap.State.ResumeAt, 1e-9)
	})

	t.Run("watched through", func(t *testing.T) {
		h := newHarness(t, remote)
		h.loadReady(t, &library.Video{ID: 1, YouTubeID: "abc123", Duration: 1000, WatchProgress: 0.96}, 0)
		assert.False(t, h.c.Snapshot().State.ResumePending)
	})

	t.Run("duration unknown until player reports it", func(t *testing.T) {
		h := newHarness(t, remote)
		h.loadReady(t, &library.Video{ID: 1, YouTubeID: "abc123", WatchProgress: 0.25}, 0)
		assert.False(t, h.c.Snapshot().State.ResumePending)

		h.c.DurationChange(400)
		snap := h.c.Snapshot()
		assert.True(t, snap.State.ResumePending)
		assert.InDelta(t, 100.0, snap.State.ResumeAt, 1e-9)
	})
}

func TestController_PlayDismissesResumePrompt(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1, LastPosition: 60}, 600)
	require.True(t, h.c.Snapshot().State.ResumePending)

	h.c.Play()
	snap := h.c.Snapshot()
	assert.False(t, snap.State.ResumePending)
	assert.True(t, snap.State.Playing)
	assert.Zero(t, snap.State.CurrentTime)
}

func TestController_ProgressTick(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)

	h.c.Play()
	h.c.TimeUpdate(10)
	h.clock.Advance(4 * time.Second)
	assert.Empty(t, h.store.Saves())

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return len(h.store.Saves()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, savedProgress{1, 10, 100}, h.store.Saves()[0])

	h.c.TimeUpdate(15)
	h.clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return len(h.store.Saves()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, savedProgress{1, 15, 100}, h.store.Saves()[1])
}

func TestController_PauseFlushesAndStopsTick(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)

	h.c.Play()
	h.c.TimeUpdate(42)
	h.c.Pause()
	require.Eventually(t, func() bool { return len(h.store.Saves()) == 1 }, time.Second, time.Millisecond)
	assert.InDelta(t, 42.0, h.store.Saves()[0].CurrentTime, 1e-9)
	assert.Zero(t, h.clock.Pending())

	h.clock.Advance(time.Minute)
	assert.Len(t, h.store.Saves(), 1)
}

func TestController_CompletionFiresOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)

	h.c.Play()
	h.c.TimeUpdate(94)
	h.c.Pause()
	assert.False(t, h.c.Snapshot().Completed)

	h.c.Play()
	h.c.TimeUpdate(96)
	h.c.Pause()
	assert.True(t, h.c.Snapshot().Completed)

	h.c.Play()
	h.c.TimeUpdate(99)
	h.clock.Advance(5 * time.Second)
	h.c.Ended()

	require.NoError(t, h.c.Close())
	assert.Equal(t, []int64{1}, h.store.Completes())
}

func TestController_UnknownDurationIgnored(t *testing.T) {
	for _, d := range []float64{math.NaN(), math.Inf(1), 0, -3} {
		h := newHarness(t, nil)
		h.loadReady(t, &library.Video{ID: 1}, 100)

		h.c.DurationChange(d)
		h.c.Play()
		h.c.TimeUpdate(3)
		h.c.Pause()

		snap := h.c.Snapshot()
		assert.Equal(t, 100.0, snap.State.Duration, "duration %v", d)
		assert.False(t, snap.Completed, "duration %v", d)
		_, err := json.Marshal(snap)
		assert.NoError(t, err)

		require.NoError(t, h.c.Close())
		assert.Empty(t, h.store.Completes(), "duration %v", d)
	}
}

func TestController_AlreadyCompletedNotMarkedAgain(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1, IsCompleted: true}, 100)
	h.c.Play()
	h.c.Ended()

	require.NoError(t, h.c.Close())
	assert.Empty(t, h.store.Completes())
}

func TestController_CompletionThresholdSetting(t *testing.T) {
	h := newHarness(t, nil, func(_ *Deps, s *Settings) { s.CompletionThreshold = 0.5 })
	h.loadReady(t, &library.Video{ID: 1}, 100)
	h.c.Play()
	h.c.TimeUpdate(50)
	h.c.Pause()
	assert.True(t, h.c.Snapshot().Completed)
}

func TestController_AutoAdvance(t *testing.T) {
	next := &library.Video{ID: 2, CourseID: 1, Title: "Next"}
	h := newHarness(t, nil, func(d *Deps, _ *Settings) {
		d.Playlist = playlistFunc(func(id int64) (*library.Video, error) {
			if id == 1 {
				return next, nil
			}
			return nil, library.ErrEndOfCourse
		})
	})
	h.loadReady(t, &library.Video{ID: 1, CourseID: 1}, 100)
	h.c.Play()
	h.c.Ended()

	require.Eventually(t, func() bool { return h.c.Snapshot().State.Countdown == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(2), h.c.Snapshot().NextVideoID)

	h.clock.Advance(time.Second)
	assert.Equal(t, 2, h.c.Snapshot().State.Countdown)
	h.clock.Advance(time.Second)
	assert.Equal(t, 1, h.c.Snapshot().State.Countdown)
	h.clock.Advance(time.Second)

	snap := h.waitPhase(t, PhaseReady)
	require.Eventually(t, func() bool { return h.c.Snapshot().VideoID == 2 }, time.Second, time.Millisecond)
	snap = h.c.Snapshot()
	assert.Equal(t, "Next", snap.Title)
	assert.Zero(t, snap.State.Countdown)
}

func TestController_CancelAdvance(t *testing.T) {
	h := newHarness(t, nil, func(d *Deps, _ *Settings) {
		d.Playlist = playlistFunc(func(int64) (*library.Video, error) {
			return &library.Video{ID: 2, CourseID: 1}, nil
		})
	})
	h.loadReady(t, &library.Video{ID: 1, CourseID: 1}, 100)
	h.c.Play()
	h.c.TimeUpdate(80)
	h.c.Ended()
	require.Eventually(t, func() bool { return h.c.Snapshot().State.Countdown == 3 }, time.Second, time.Millisecond)

	h.c.CancelAdvance()
	h.clock.Advance(10 * time.Second)

	snap := h.c.Snapshot()
	assert.Equal(t, int64(1), snap.VideoID)
	assert.Equal(t, ViewReady, snap.View)
	assert.Zero(t, snap.State.Countdown)
	assert.InDelta(t, 100.0, snap.State.CurrentTime, 1e-9)
}

func TestController_EndOfCourseNoCountdown(t *testing.T) {
	asked := make(chan int64, 1)
	h := newHarness(t, nil, func(d *Deps, _ *Settings) {
		d.Playlist = playlistFunc(func(id int64) (*library.Video, error) {
			asked <- id
			return nil, fmt.Errorf("next after %d: %w", id, library.ErrEndOfCourse)
		})
	})
	h.loadReady(t, &library.Video{ID: 1}, 100)
	h.c.Play()
	h.c.Ended()

	select {
	case id := <-asked:
		assert.Equal(t, int64(1), id)
	case <-time.After(time.Second):
		t.Fatal("playlist was not consulted")
	}
	require.Never(t, func() bool { return h.c.Snapshot().State.Countdown > 0 }, 30*time.Millisecond, 5*time.Millisecond)
}

func TestController_AutoAdvanceDisabled(t *testing.T) {
	h := newHarness(t, nil, func(d *Deps, s *Settings) {
		s.AutoAdvance = false
		d.Playlist = playlistFunc(func(int64) (*library.Video, error) {
			t.Error("playlist must not be consulted")
			return nil, library.ErrEndOfCourse
		})
	})
	h.loadReady(t, &library.Video{ID: 1}, 100)
	h.c.Play()
	h.c.Ended()
	assert.Zero(t, h.c.Snapshot().State.Countdown)
}

func TestController_NeedsFolderAccess(t *testing.T) {
	picked := make(chan struct{})
	var h *harness
	h = newHarness(t, resolverFunc(func(_ context.Context, v *library.Video, _ int64) (resolve.Source, error) {
		select {
		case <-picked:
			return resolve.Local{Lease: h.leases.Register(memBlob("v.mp4")), Name: "v.mp4"}, nil
		default:
			return resolve.NeedsFolderAccess{Folder: "CourseX"}, nil
		}
	}))

	assert.False(t, h.c.FolderSelected(), "nothing loaded yet")

	h.c.Load(&library.Video{ID: 1, RelativePath: "CourseX/v.mp4"}, 1)
	snap := h.waitPhase(t, PhaseNeedsFolderAccess)
	assert.Equal(t, ViewFolderAccess, snap.View)
	assert.Equal(t, "CourseX", snap.NeedsFolder)
	assert.Nil(t, snap.Failure)

	close(picked)
	require.True(t, h.c.FolderSelected())
	snap = h.waitPhase(t, PhaseReady)
	assert.Empty(t, snap.NeedsFolder)
}

func TestController_PermissionDeniedThenRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	h := newHarness(t, resolver)

	gomock.InOrder(
		resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), int64(1)).
			Return(nil, fmt.Errorf("v.mp4: %w", resolve.ErrPermissionDenied)),
		resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), int64(1)).
			DoAndReturn(func(context.Context, *library.Video, int64) (resolve.Source, error) {
				return resolve.Local{Lease: h.leases.Register(memBlob("v.mp4")), Name: "v.mp4"}, nil
			}),
	)

	h.c.Load(&library.Video{ID: 1, HandlePath: "/c/v.mp4"}, 1)
	snap := h.waitPhase(t, PhaseError)
	assert.Equal(t, ViewError, snap.View)
	require.NotNil(t, snap.Failure)
	assert.Equal(t, FailurePermissionDenied, snap.Failure.Kind)
	assert.True(t, snap.Failure.Retryable)
	assert.False(t, h.c.FolderSelected(), "permission denial is not fixed by picking a folder")

	require.True(t, h.c.Retry())
	snap = h.waitPhase(t, PhaseReady)
	assert.Nil(t, snap.Failure)
}

func TestController_UnknownRetriedOnce(t *testing.T) {
	h := newHarness(t, resolverFunc(func(context.Context, *library.Video, int64) (resolve.Source, error) {
		return nil, errors.New("disk on fire")
	}))

	h.c.Load(&library.Video{ID: 1, HandlePath: "/c/v.mp4"}, 1)
	snap := h.waitPhase(t, PhaseError)
	assert.Equal(t, FailureUnknown, snap.Failure.Kind)
	assert.True(t, snap.Failure.Retryable)

	require.True(t, h.c.Retry())
	require.Eventually(t, func() bool {
		s := h.c.Snapshot()
		return s.Phase == PhaseError && s.Failure != nil && !s.Failure.Retryable
	}, time.Second, time.Millisecond)
	assert.False(t, h.c.Retry())

	// A fresh load of the video resets the retry budget.
	h.c.Load(&library.Video{ID: 1}, 1)
	snap = h.waitPhase(t, PhaseError)
	assert.True(t, snap.Failure.Retryable)
}

func TestController_MediaError(t *testing.T) {
	t.Run("local decode failure", func(t *testing.T) {
		h := newHarness(t, nil)
		h.loadReady(t, &library.Video{ID: 1}, 100)
		h.c.Play()
		h.c.MediaError("MEDIA_ERR_SRC_NOT_SUPPORTED")

		snap := h.c.Snapshot()
		assert.Equal(t, PhaseError, snap.Phase)
		assert.Equal(t, FailureUnsupportedFormat, snap.Failure.Kind)
		assert.False(t, snap.Failure.Retryable)
		assert.False(t, snap.State.Playing)
		assert.Zero(t, h.leases.Active())
		assert.False(t, h.c.Retry())
	})

	t.Run("remote network failure", func(t *testing.T) {
		h := newHarness(t, resolverFunc(func(context.Context, *library.Video, int64) (resolve.Source, error) {
			return resolve.Remote{URL: "https://player.vimeo.com/video/1", Provider: resolve.ProviderVimeo, EmbedID: "1"}, nil
		}))
		h.loadReady(t, &library.Video{ID: 1, URL: "https://vimeo.com/1"}, 0)
		h.c.MediaError("embed failed")

		snap := h.c.Snapshot()
		assert.Equal(t, FailureNetwork, snap.Failure.Kind)
		assert.True(t, snap.Failure.Retryable)
	})
}

func TestController_Speed(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)

	assert.False(t, h.c.SetSpeed(3))
	assert.False(t, h.c.SetSpeed(1.1))
	assert.Equal(t, 1.0, h.c.Snapshot().State.Speed)

	assert.True(t, h.c.SetSpeed(1.5))
	assert.Equal(t, 1.5, h.c.Snapshot().State.Speed)
	assert.True(t, h.transport.Has("rate 1.5"))

	// The chosen speed carries over to the next video.
	h.loadReady(t, &library.Video{ID: 2}, 100)
	assert.Equal(t, 1.5, h.c.Snapshot().State.Speed)
}

func TestController_Boost(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)

	t.Run("early release changes nothing", func(t *testing.T) {
		h.c.Play()
		h.c.BoostPress()
		h.clock.Advance(499 * time.Millisecond)
		assert.False(t, h.c.BoostRelease())

		snap := h.c.Snapshot()
		assert.True(t, snap.State.Playing, "early release must not toggle playback")
		assert.False(t, snap.State.Boosting)
		assert.False(t, h.transport.Has("rate 2"))

		h.clock.Advance(time.Second)
		assert.False(t, h.c.Snapshot().State.Boosting)
	})

	t.Run("hold boosts and release restores", func(t *testing.T) {
		h.c.BoostPress()
		h.clock.Advance(BoostHold)
		snap := h.c.Snapshot()
		assert.True(t, snap.State.Boosting)
		assert.Equal(t, BoostRate, snap.State.Rate())
		assert.True(t, h.transport.Has("rate 2"))

		assert.True(t, h.c.BoostRelease())
		snap = h.c.Snapshot()
		assert.False(t, snap.State.Boosting)
		assert.Equal(t, 1.0, snap.State.Rate())
		calls := h.transport.Calls()
		assert.Equal(t, "rate 1", calls[len(calls)-1])
	})

	t.Run("no boost while paused", func(t *testing.T) {
		h.c.Pause()
		h.c.BoostPress()
		h.clock.Advance(time.Second)
		assert.False(t, h.c.Snapshot().State.Boosting)
		assert.False(t, h.c.BoostRelease())
	})
}

func TestController_Seek(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)

	h.c.Seek(150)
	assert.Equal(t, 100.0, h.c.Snapshot().State.CurrentTime)
	h.c.Seek(-5)
	assert.Equal(t, 0.0, h.c.Snapshot().State.CurrentTime)

	h.c.Seek(50)
	h.c.SeekBy(10)
	assert.Equal(t, 60.0, h.c.Snapshot().State.CurrentTime)
	h.c.SeekBy(-100)
	assert.Equal(t, 0.0, h.c.Snapshot().State.CurrentTime)

	h.c.SeekPercent(7)
	assert.InDelta(t, 70.0, h.c.Snapshot().State.CurrentTime, 1e-9)
	h.c.SeekPercent(0)
	assert.Equal(t, 0.0, h.c.Snapshot().State.CurrentTime)
}

func TestController_HandleKey(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)
	h.c.Seek(50)

	steps := []struct {
		key   string
		check func(t *testing.T, s State)
	}{
		{" ", func(t *testing.T, s State) { assert.True(t, s.Playing) }},
		{"k", func(t *testing.T, s State) { assert.False(t, s.Playing) }},
		{"l", func(t *testing.T, s State) { assert.Equal(t, 60.0, s.CurrentTime) }},
		{"j", func(t *testing.T, s State) { assert.Equal(t, 50.0, s.CurrentTime) }},
		{"ArrowRight", func(t *testing.T, s State) { assert.Equal(t, 55.0, s.CurrentTime) }},
		{"ArrowLeft", func(t *testing.T, s State) { assert.Equal(t, 50.0, s.CurrentTime) }},
		{"3", func(t *testing.T, s State) { assert.InDelta(t, 30.0, s.CurrentTime, 1e-9) }},
		{"m", func(t *testing.T, s State) { assert.True(t, s.Muted) }},
		{"m", func(t *testing.T, s State) { assert.False(t, s.Muted) }},
		{"ArrowDown", func(t *testing.T, s State) { assert.InDelta(t, 0.9, s.Volume, 1e-9) }},
		{"ArrowUp", func(t *testing.T, s State) { assert.InDelta(t, 1.0, s.Volume, 1e-9) }},
		{"c", func(t *testing.T, s State) { assert.False(t, s.CaptionsEnabled) }},
		{">", func(t *testing.T, s State) { assert.Equal(t, 1.25, s.Speed) }},
		{"<", func(t *testing.T, s State) { assert.Equal(t, 1.0, s.Speed) }},
	}
	for i, step := range steps {
		require.True(t, h.c.HandleKey(step.key), "step %d key %q", i, step.key)
		step.check(t, h.c.Snapshot().State)
	}

	assert.False(t, h.c.HandleKey("q"))
}

func TestController_HandleKeyDisabled(t *testing.T) {
	h := newHarness(t, nil, func(_ *Deps, s *Settings) { s.KeyboardShortcuts = false })
	h.loadReady(t, &library.Video{ID: 1}, 100)

	assert.False(t, h.c.HandleKey(" "))
	assert.False(t, h.c.Snapshot().State.Playing)

	h.c.UpdateSettings(DefaultSettings())
	assert.True(t, h.c.HandleKey(" "))
	assert.True(t, h.c.Snapshot().State.Playing)
}

func TestController_Volume(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)

	h.c.SetVolume(1.7)
	assert.Equal(t, 1.0, h.c.Snapshot().State.Volume)
	h.c.ToggleMute()
	assert.True(t, h.c.Snapshot().State.Muted)
	h.c.SetVolume(0.4)
	snap := h.c.Snapshot()
	assert.InDelta(t, 0.4, snap.State.Volume, 1e-9)
	assert.False(t, snap.State.Muted, "raising the volume unmutes")
	assert.True(t, h.transport.Has("volume 0.4 false"))
}

func TestController_Captions(t *testing.T) {
	h := newHarness(t, nil)
	chunks := []captions.Chunk{
		captions.NewChunk("Hello", 0, 0.5),
		captions.NewChunk("world.", 0.5, 1),
	}
	h.loadReady(t, &library.Video{ID: 1, Captions: chunks}, 100)

	h.c.TimeUpdate(0.7)
	assert.Equal(t, "Hello world.", h.c.Snapshot().Caption)

	h.c.ToggleCaptions()
	assert.Empty(t, h.c.Snapshot().Caption)
	h.c.ToggleCaptions()

	h.c.SetCaptions(99, []captions.Chunk{captions.NewChunk("ignored", 0, 1)})
	assert.Equal(t, "Hello world.", h.c.Snapshot().Caption)

	h.c.SetCaptions(1, []captions.Chunk{captions.NewChunk("Replaced", 0, 2)})
	assert.Equal(t, "Replaced", h.c.Snapshot().Caption)
	assert.Len(t, h.c.Segments(), 1)
}

func TestController_EventsPublished(t *testing.T) {
	bus := events.NewBus(nil, testLogger())
	defer bus.Close()
	ch := bus.SubscribeAll(32)

	h := newHarness(t, nil, func(d *Deps, _ *Settings) { d.Bus = bus })
	h.loadReady(t, &library.Video{ID: 1, CourseID: 4}, 100)
	h.c.Play()
	h.c.TimeUpdate(97)
	h.c.Pause()

	var got []string
	timeout := time.After(time.Second)
	for len(got) < 5 {
		select {
		case e := <-ch:
			got = append(got, e.EventType())
		case <-timeout:
			t.Fatalf("got events %v", got)
		}
	}
	assert.Equal(t, []string{
		events.EventSourceResolved,
		events.EventPlaybackStarted,
		events.EventVideoCompleted,
	}, got[:3])
	// The progress write lands from the writer goroutine.
	assert.ElementsMatch(t, []string{events.EventPlaybackPaused, events.EventProgressSaved}, got[3:])
}

func TestController_CloseFlushesAndReleases(t *testing.T) {
	h := newHarness(t, nil)
	h.loadReady(t, &library.Video{ID: 1}, 100)
	h.c.Play()
	h.c.TimeUpdate(33)

	require.NoError(t, h.c.Close())
	assert.Zero(t, h.leases.Active())
	assert.Equal(t, []savedProgress{{1, 33, 100}}, h.store.Saves())
	assert.Zero(t, h.clock.Pending())

	// Calls after close are ignored.
	h.c.Load(&library.Video{ID: 2}, 1)
	h.c.Play()
	assert.Equal(t, int64(1), h.c.Snapshot().VideoID)
	assert.NoError(t, h.c.Close())
}

func TestController_CloseDuringResolution(t *testing.T) {
	started := make(chan struct{})
	var h *harness
	h = newHarness(t, resolverFunc(func(ctx context.Context, _ *library.Video, _ int64) (resolve.Source, error) {
		close(started)
		<-ctx.Done()
		return resolve.Local{Lease: h.leases.Register(memBlob("late.mp4")), Name: "late.mp4"}, nil
	}))

	h.c.Load(&library.Video{ID: 1}, 1)
	<-started
	require.NoError(t, h.c.Close())
	assert.Zero(t, h.leases.Active(), "a result arriving after close is released")
}
