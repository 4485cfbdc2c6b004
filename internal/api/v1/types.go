// internal/api/v1/types.go
package v1

import (
	"time"

	"github.com/vmunix/reprise/internal/library"
)

// courseResponse is the API representation of a course.
type courseResponse struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	OriginalTitle string          `json:"original_title"`
	RootPath      string          `json:"root_path"`
	AddedAt       time.Time       `json:"added_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Videos        []videoResponse `json:"videos,omitempty"`
}

// videoResponse is the API representation of a video.
type videoResponse struct {
	ID            int64     `json:"id"`
	CourseID      int64     `json:"course_id"`
	Position      int       `json:"position"`
	Title         string    `json:"title"`
	Duration      float64   `json:"duration"`
	Remote        bool      `json:"remote"`
	YouTubeID     string    `json:"youtube_id,omitempty"`
	DriveFileID   string    `json:"drive_file_id,omitempty"`
	URL           string    `json:"url,omitempty"`
	RelativePath  string    `json:"relative_path,omitempty"`
	FileName      string    `json:"file_name,omitempty"`
	LastPosition  float64   `json:"last_position"`
	WatchProgress float64   `json:"watch_progress"`
	IsCompleted   bool      `json:"is_completed"`
	HasCaptions   bool      `json:"has_captions"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// listCoursesResponse is the response for GET /courses.
type listCoursesResponse struct {
	Items []courseResponse `json:"items"`
	Total int              `json:"total"`
}

// importRequest is the body of POST /courses.
type importRequest struct {
	Path    string `json:"path"`
	Handles *bool  `json:"handles,omitempty"`
}

// folderRequest is the body of POST /folders/pick and /folders/root.
type folderRequest struct {
	Path   string `json:"path"`
	Folder string `json:"folder,omitempty"`
}

type folderResponse struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Indexed   bool      `json:"indexed"`
	Files     int       `json:"files"`
	GrantedAt time.Time `json:"granted_at,omitzero"`
}

type pickResponse struct {
	Folder   string `json:"folder"`
	Path     string `json:"path"`
	Files    int    `json:"files"`
	Reloaded bool   `json:"reloaded"`
}

// EventResponse is the API representation of a persisted event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Payload    string `json:"payload,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type listEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func courseToResponse(c *library.Course) courseResponse {
	return courseResponse{
		ID:            c.ID,
		Title:         c.Title,
		OriginalTitle: c.OriginalTitle,
		RootPath:      c.RootPath,
		AddedAt:       c.AddedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func videoToResponse(v *library.Video) videoResponse {
	return videoResponse{
		ID:            v.ID,
		CourseID:      v.CourseID,
		Position:      v.Position,
		Title:         v.Title,
		Duration:      v.Duration,
		Remote:        v.IsRemote(),
		YouTubeID:     v.YouTubeID,
		DriveFileID:   v.DriveFileID,
		URL:           v.URL,
		RelativePath:  v.RelativePath,
		FileName:      v.FileName,
		LastPosition:  v.LastPosition,
		WatchProgress: v.WatchProgress,
		IsCompleted:   v.IsCompleted,
		HasCaptions:   len(v.Captions) > 0,
		UpdatedAt:     v.UpdatedAt,
	}
}

func videosToResponse(videos []*library.Video) []videoResponse {
	out := make([]videoResponse, len(videos))
	for i, v := range videos {
		out[i] = videoToResponse(v)
	}
	return out
}
