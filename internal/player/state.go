package player

import "time"

// Phase is the controller's top-level state.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseLoading           Phase = "loading"
	PhaseNeedsFolderAccess Phase = "needs_folder_access"
	PhaseError             Phase = "error"
	PhaseReady             Phase = "ready"
)

// View is what the caller should render. Exactly one applies at a time.
type View string

const (
	ViewLoading      View = "loading"
	ViewResumePrompt View = "resume-prompt"
	ViewFolderAccess View = "folder-access"
	ViewError        View = "error"
	ViewReady        View = "ready"
)

// State is the per-video playback state. It is rebuilt on every load.
type State struct {
	CurrentTime     float64 `json:"current_time"`
	Duration        float64 `json:"duration"`
	Playing         bool    `json:"playing"`
	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
	Speed           float64 `json:"speed"`
	Boosting        bool    `json:"boosting"`
	CaptionsEnabled bool    `json:"captions_enabled"`
	ResumePending   bool    `json:"resume_pending"`
	ResumeAt        float64 `json:"resume_at,omitempty"`
	Countdown       int     `json:"countdown,omitempty"`
}

// Rate is the playback rate actually applied to the media.
func (s State) Rate() float64 {
	if s.Boosting {
		return BoostRate
	}
	return s.Speed
}

// Snapshot is a consistent copy of the controller's state.
type Snapshot struct {
	Phase       Phase    `json:"phase"`
	View        View     `json:"view"`
	VideoID     int64    `json:"video_id,omitempty"`
	CourseID    int64    `json:"course_id,omitempty"`
	Title       string   `json:"title,omitempty"`
	SourceKind  string   `json:"source_kind,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
	NeedsFolder string   `json:"needs_folder,omitempty"`
	Failure     *Failure `json:"failure,omitempty"`
	State       State    `json:"state"`
	Caption     string   `json:"caption,omitempty"`
	NextVideoID int64    `json:"next_video_id,omitempty"`
	Completed   bool     `json:"completed"`
}

func viewFor(p Phase, s State) View {
	switch p {
	case PhaseNeedsFolderAccess:
		return ViewFolderAccess
	case PhaseError:
		return ViewError
	case PhaseReady:
		if s.ResumePending {
			return ViewResumePrompt
		}
		return ViewReady
	default:
		return ViewLoading
	}
}

// Settings are the user's playback preferences.
type Settings struct {
	ResumeOnReopen      bool
	CompletionThreshold float64 // fraction of duration, 0-1
	KeyboardShortcuts   bool
	AutoAdvance         bool
	ProgressInterval    time.Duration
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		ResumeOnReopen:      true,
		CompletionThreshold: 0.95,
		KeyboardShortcuts:   true,
		AutoAdvance:         true,
		ProgressInterval:    5 * time.Second,
	}
}

func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.CompletionThreshold <= 0 || s.CompletionThreshold > 1 {
		s.CompletionThreshold = d.CompletionThreshold
	}
	if s.ProgressInterval <= 0 {
		s.ProgressInterval = d.ProgressInterval
	}
	return s
}
