// Package library manages course and video records and their watch progress.
package library

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/reprise/internal/captions"
)

// Course is a folder of lesson videos.
type Course struct {
	ID            int64
	Title         string
	OriginalTitle string // raw folder name, key into the fallback file index
	RootPath      string
	AddedAt       time.Time
	UpdatedAt     time.Time
}

// Video is a single lesson. Exactly one origin is expected to be set:
// a remote identity (YouTubeID, DriveFileID, URL) or a local one
// (HandlePath, RelativePath, FileName).
type Video struct {
	ID       int64
	CourseID int64
	Position int
	Title    string
	Duration float64 // seconds; may be stale until the media reports its own

	YouTubeID   string
	DriveFileID string
	URL         string

	HandlePath   string // absolute path captured when the file was picked directly
	RelativePath string // "<course folder>/<sub dirs>/<file>"
	FileName     string // legacy records without a relative path

	LastPosition  float64 // seconds
	WatchProgress float64 // 0-1, derived from LastPosition/Duration
	IsCompleted   bool
	Captions      []captions.Chunk

	AddedAt   time.Time
	UpdatedAt time.Time
}

// BaseName is the file name without extension, or "video-<id>" when the
// video has no file name. Exported sidecar files are named after it.
func (v *Video) BaseName() string {
	name := strings.TrimSuffix(v.FileName, filepath.Ext(v.FileName))
	if name == "" {
		return "video-" + strconv.FormatInt(v.ID, 10)
	}
	return name
}

// IsRemote reports whether the video carries a remote identity.
func (v *Video) IsRemote() bool {
	return v.YouTubeID != "" || v.DriveFileID != "" || v.URL != ""
}

// Folder is the human-readable identity of a folder the user picked.
// Only the identity survives restarts; access grants do not.
type Folder struct {
	Name      string
	Path      string
	GrantedAt time.Time
}
