// Package resolve maps a video record to playable bytes.
//
// Resolution tries, in order: a remote embed, a direct file handle, the
// fallback file index, traversal of the session root folder, and finally a
// request for the user to pick the course folder. Expected conditions are
// returned as a Source; only permission denial and I/O failures are errors.
package resolve

import (
	"github.com/vmunix/reprise/internal/media"
)

// Source is the result of resolving one video. It is one of Local, Remote
// or NeedsFolderAccess.
type Source interface {
	// Kind returns "local", "remote" or "folder-access".
	Kind() string
	isSource()
}

// Origin records which strategy produced a Local source.
type Origin string

const (
	OriginHandle    Origin = "handle"
	OriginIndex     Origin = "index"
	OriginTraversal Origin = "traversal"
)

// Local is a file on this machine served through a media lease. The holder
// must release the lease exactly once.
type Local struct {
	Lease  *media.Lease
	Name   string
	Origin Origin
}

// Remote is an embeddable video hosted elsewhere.
type Remote struct {
	URL      string // embed URL
	Provider Provider
	EmbedID  string
}

// NeedsFolderAccess asks the user to pick the named course folder.
// Folder is empty when the course folder name is unknown.
type NeedsFolderAccess struct {
	Folder string
}

func (Local) Kind() string             { return "local" }
func (Remote) Kind() string            { return "remote" }
func (NeedsFolderAccess) Kind() string { return "folder-access" }

func (Local) isSource()             {}
func (Remote) isSource()            {}
func (NeedsFolderAccess) isSource() {}

// URL returns the URL a player should load, or "" for NeedsFolderAccess.
func URL(s Source) string {
	switch s := s.(type) {
	case Local:
		return s.Lease.URL()
	case Remote:
		return s.URL
	default:
		return ""
	}
}

// Release releases s's lease if it holds one.
func Release(s Source) error {
	if l, ok := s.(Local); ok && l.Lease != nil {
		return l.Lease.Release()
	}
	return nil
}
