package events

// Entity types
const (
	EntityVideo         = "video"
	EntityCourse        = "course"
	EntityFolder        = "folder"
	EntityTranscription = "transcription"
	EntityPlayer        = "player"
)

// Event type constants
const (
	EventCourseImported       = "course.imported"
	EventFolderPicked         = "folder.picked"
	EventSourceResolved       = "source.resolved"
	EventFolderAccessNeeded   = "source.folder_access_needed"
	EventPlaybackFailed       = "playback.failed"
	EventPlaybackStarted      = "playback.started"
	EventPlaybackPaused       = "playback.paused"
	EventProgressSaved        = "progress.saved"
	EventVideoCompleted       = "video.completed"
	EventAdvanceRequested     = "video.advance_requested"
	EventPlayerCommand        = "player.command"
	EventTranscriptionStarted = "transcription.started"
	EventTranscriptionStep    = "transcription.progressed"
	EventTranscriptionDone    = "transcription.completed"
	EventTranscriptionFailed  = "transcription.failed"
)

// CourseImported is emitted when a course folder is scanned into the library.
type CourseImported struct {
	BaseEvent
	CourseID int64  `json:"course_id"`
	Title    string `json:"title"`
	Folder   string `json:"folder"`
	Videos   int    `json:"videos"`
}

// FolderPicked is emitted when a folder is added to the fallback index.
type FolderPicked struct {
	BaseEvent
	Folder string `json:"folder"`
	Path   string `json:"path"`
	Files  int    `json:"files"`
}

// SourceResolved is emitted when a video's playable source is found.
type SourceResolved struct {
	BaseEvent
	CourseID int64  `json:"course_id"`
	Kind     string `json:"kind"`   // "local" or "remote"
	Origin   string `json:"origin"` // "handle", "index", "traversal", or a provider
}

// FolderAccessNeeded is emitted when no local path could be resolved and the
// user must pick the course folder.
type FolderAccessNeeded struct {
	BaseEvent
	CourseID int64  `json:"course_id"`
	Folder   string `json:"folder"`
}

// PlaybackFailed is emitted when a load ends in the error phase.
type PlaybackFailed struct {
	BaseEvent
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PlaybackStarted is emitted when playback starts or resumes.
type PlaybackStarted struct {
	BaseEvent
	Position float64 `json:"position"`
}

// PlaybackPaused is emitted when playback pauses.
type PlaybackPaused struct {
	BaseEvent
	Position float64 `json:"position"`
}

// ProgressSaved is emitted after a progress write reaches the store.
type ProgressSaved struct {
	BaseEvent
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// VideoCompleted is emitted once per load when the completion threshold is crossed.
type VideoCompleted struct {
	BaseEvent
	CourseID int64 `json:"course_id"`
}

// AdvanceRequested is emitted when the auto-advance countdown finishes.
type AdvanceRequested struct {
	BaseEvent
	NextVideoID int64 `json:"next_video_id"`
}

// PlayerCommand carries a transport command to the rendering client.
type PlayerCommand struct {
	BaseEvent
	Command string  `json:"command"` // "play", "pause", "seek", "rate", "volume"
	Value   float64 `json:"value,omitempty"`
	Muted   bool    `json:"muted,omitempty"`
}
