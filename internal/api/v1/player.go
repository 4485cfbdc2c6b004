package v1

import (
	"net/http"
	"time"

	"github.com/vmunix/reprise/internal/captions"
	"github.com/vmunix/reprise/internal/player"
)

type loadRequest struct {
	VideoID int64 `json:"video_id"`
}

// seekRequest sets exactly one of its fields.
type seekRequest struct {
	Position *float64 `json:"position,omitempty"`
	Delta    *float64 `json:"delta,omitempty"`
	Percent  *int     `json:"percent,omitempty"` // 0-9, tenths of the duration
}

type speedRequest struct {
	Rate float64 `json:"rate"`
}

type volumeRequest struct {
	Volume float64 `json:"volume"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type keyResponse struct {
	Handled bool            `json:"handled"`
	Player  player.Snapshot `json:"player"`
}

type boostResponse struct {
	Boosted bool            `json:"boosted"`
	Player  player.Snapshot `json:"player"`
}

// mediaEventRequest reports what the rendering media element observed.
type mediaEventRequest struct {
	Event   string  `json:"event"` // timeupdate, durationchange, ended, error
	Value   float64 `json:"value,omitempty"`
	Message string  `json:"message,omitempty"`
}

type settingsResponse struct {
	ResumeOnReopen      bool    `json:"resume_on_reopen"`
	CompletionThreshold float64 `json:"completion_threshold"`
	KeyboardShortcuts   bool    `json:"keyboard_shortcuts"`
	AutoAdvance         bool    `json:"auto_advance"`
	ProgressInterval    string  `json:"progress_interval"`
}

// settingsRequest is a partial update; absent fields keep their value.
type settingsRequest struct {
	ResumeOnReopen      *bool    `json:"resume_on_reopen,omitempty"`
	CompletionThreshold *float64 `json:"completion_threshold,omitempty"`
	KeyboardShortcuts   *bool    `json:"keyboard_shortcuts,omitempty"`
	AutoAdvance         *bool    `json:"auto_advance,omitempty"`
	ProgressInterval    *string  `json:"progress_interval,omitempty"`
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Player.Snapshot())
}

// loadVideo starts loading a video. Resolution continues in the background,
// so the returned snapshot is usually still loading.
func (s *Server) loadVideo(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.VideoID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "video_id is required")
		return
	}
	v, err := s.deps.Library.GetVideo(req.VideoID)
	if err != nil {
		writeStoreError(w, err, "Video")
		return
	}
	s.deps.Player.Load(v, v.CourseID)
	writeJSON(w, http.StatusAccepted, s.deps.Player.Snapshot())
}

// playerAction adapts a controller method that cannot fail.
func (s *Server) playerAction(fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn()
		writeJSON(w, http.StatusOK, s.deps.Player.Snapshot())
	}
}

// playerCheck adapts a controller method that reports whether it applied.
func (s *Server) playerCheck(fn func() bool, errCode, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !fn() {
			writeError(w, http.StatusConflict, errCode, message)
			return
		}
		writeJSON(w, http.StatusAccepted, s.deps.Player.Snapshot())
	}
}

func (s *Server) boostRelease(w http.ResponseWriter, r *http.Request) {
	boosted := s.deps.Player.BoostRelease()
	writeJSON(w, http.StatusOK, boostResponse{Boosted: boosted, Player: s.deps.Player.Snapshot()})
}

func (s *Server) seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.Position != nil:
		s.deps.Player.Seek(*req.Position)
	case req.Delta != nil:
		s.deps.Player.SeekBy(*req.Delta)
	case req.Percent != nil:
		if *req.Percent < 0 || *req.Percent > 9 {
			writeError(w, http.StatusBadRequest, "INVALID_PERCENT", "percent must be 0-9")
			return
		}
		s.deps.Player.SeekPercent(*req.Percent)
	default:
		writeError(w, http.StatusBadRequest, "MISSING_TARGET", "one of position, delta or percent is required")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Player.Snapshot())
}

func (s *Server) setSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.deps.Player.SetSpeed(req.Rate) {
		writeError(w, http.StatusBadRequest, "INVALID_SPEED", "unsupported playback rate")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Player.Snapshot())
}

func (s *Server) setVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.deps.Player.SetVolume(req.Volume)
	writeJSON(w, http.StatusOK, s.deps.Player.Snapshot())
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	handled := s.deps.Player.HandleKey(req.Key)
	writeJSON(w, http.StatusOK, keyResponse{Handled: handled, Player: s.deps.Player.Snapshot()})
}

func (s *Server) mediaEvent(w http.ResponseWriter, r *http.Request) {
	var req mediaEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Event {
	case "timeupdate":
		s.deps.Player.TimeUpdate(req.Value)
	case "durationchange":
		s.deps.Player.DurationChange(req.Value)
	case "ended":
		s.deps.Player.Ended()
	case "error":
		s.deps.Player.MediaError(req.Message)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_EVENT", "unknown media event: "+req.Event)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Player.Snapshot())
}

func (s *Server) playerCaptions(w http.ResponseWriter, r *http.Request) {
	segments := s.deps.Player.Segments()
	if segments == nil {
		segments = []captions.Segment{}
	}
	writeJSON(w, http.StatusOK, segments)
}

func settingsToResponse(st player.Settings) settingsResponse {
	return settingsResponse{
		ResumeOnReopen:      st.ResumeOnReopen,
		CompletionThreshold: st.CompletionThreshold,
		KeyboardShortcuts:   st.KeyboardShortcuts,
		AutoAdvance:         st.AutoAdvance,
		ProgressInterval:    st.ProgressInterval.String(),
	}
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsToResponse(s.deps.Player.Settings()))
}

// updateSettings applies a partial settings update for this run. The
// config file is not rewritten; a reload of it replaces these values.
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	st := s.deps.Player.Settings()
	if req.ResumeOnReopen != nil {
		st.ResumeOnReopen = *req.ResumeOnReopen
	}
	if req.CompletionThreshold != nil {
		if *req.CompletionThreshold <= 0 || *req.CompletionThreshold > 1 {
			writeError(w, http.StatusBadRequest, "INVALID_SETTINGS", "completion_threshold must be in (0, 1]")
			return
		}
		st.CompletionThreshold = *req.CompletionThreshold
	}
	if req.KeyboardShortcuts != nil {
		st.KeyboardShortcuts = *req.KeyboardShortcuts
	}
	if req.AutoAdvance != nil {
		st.AutoAdvance = *req.AutoAdvance
	}
	if req.ProgressInterval != nil {
		d, err := time.ParseDuration(*req.ProgressInterval)
		if err != nil || d < time.Second {
			writeError(w, http.StatusBadRequest, "INVALID_SETTINGS", "progress_interval must be a duration of at least 1s")
			return
		}
		st.ProgressInterval = d
	}

	s.deps.Player.UpdateSettings(st)
	writeJSON(w, http.StatusOK, settingsToResponse(s.deps.Player.Settings()))
}
