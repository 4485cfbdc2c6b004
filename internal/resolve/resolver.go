package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/vmunix/reprise/internal/access"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/media"
	"github.com/vmunix/reprise/internal/metrics"
)

// ErrPermissionDenied is returned when a direct file handle exists but the
// user refused, or abandoned, the permission prompt.
var ErrPermissionDenied = errors.New("permission denied")

//go:generate mockgen -source=resolver.go -destination=mocks/resolver.go -package=mocks

// CourseGetter looks up the course a video belongs to.
type CourseGetter interface {
	GetCourse(id int64) (*library.Course, error)
}

// Resolver turns video records into Sources.
type Resolver struct {
	courses CourseGetter
	session *access.Session
	leases  *media.Registry
	log     *slog.Logger
}

// New creates a resolver over the given session and lease registry.
func New(courses CourseGetter, session *access.Session, leases *media.Registry, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		courses: courses,
		session: session,
		leases:  leases,
		log:     log.With("component", "resolver"),
	}
}

// Resolve finds a playable source for v. It returns an error only for
// ErrPermissionDenied and I/O failures.
func (r *Resolver) Resolve(ctx context.Context, v *library.Video, courseID int64) (Source, error) {
	src, err := r.resolve(ctx, v, courseID)
	switch {
	case errors.Is(err, ErrPermissionDenied):
		metrics.IncResolve("denied")
	case err != nil:
		metrics.IncResolve("error")
	default:
		metrics.IncResolve(outcome(src))
	}
	metrics.SetActiveLeases(r.leases.Active())
	return src, err
}

func outcome(s Source) string {
	switch s := s.(type) {
	case Local:
		return string(s.Origin)
	case Remote:
		return "remote"
	default:
		return "folder_access"
	}
}

func (r *Resolver) resolve(ctx context.Context, v *library.Video, courseID int64) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if remote, ok := RemoteFor(v); ok {
		r.log.Debug("resolved remote", "video_id", v.ID, "provider", remote.Provider)
		return remote, nil
	}
	if v.URL != "" {
		r.log.Debug("url is not a known remote host, trying local", "video_id", v.ID, "url", v.URL)
	}

	if v.HandlePath != "" {
		return r.fromHandle(ctx, v)
	}

	if v.RelativePath != "" {
		folder := r.courseFolder(courseID, firstSegment(v.RelativePath))
		if blob, ok := r.findInIndex(folder, v.RelativePath); ok {
			return r.local(blob, OriginIndex, v), nil
		}
		if root := r.session.Root(); root != nil {
			if blob, ok := r.traverse(ctx, root, folder, v.RelativePath); ok {
				return r.local(blob, OriginTraversal, v), nil
			}
		}
		r.log.Debug("needs folder access", "video_id", v.ID, "folder", folder)
		return NeedsFolderAccess{Folder: folder}, nil
	}

	if v.FileName != "" {
		folder := r.courseFolder(courseID, "")
		if folder == "" {
			return NeedsFolderAccess{}, nil
		}
		if key, ok := r.indexKey(folder); ok {
			if blob, ok := r.session.Index.FindByName(key, v.FileName); ok {
				return r.local(blob, OriginIndex, v), nil
			}
		}
		return NeedsFolderAccess{Folder: folder}, nil
	}

	return NeedsFolderAccess{Folder: r.courseFolder(courseID, "")}, nil
}

// fromHandle never falls through to path lookup: a denied handle is an error.
func (r *Resolver) fromHandle(ctx context.Context, v *library.Video) (Source, error) {
	h := r.session.FileHandle(v.HandlePath)

	perm, err := h.QueryPermission(ctx)
	if err != nil || perm != access.PermissionGranted {
		if err != nil {
			r.log.Debug("permission query failed, prompting", "video_id", v.ID, "error", err)
		}
		perm, err = h.RequestPermission(ctx)
		if err != nil || perm != access.PermissionGranted {
			r.log.Info("file access denied", "video_id", v.ID, "file", h.Name(), "permission", perm)
			return nil, fmt.Errorf("%s: %w", h.Name(), ErrPermissionDenied)
		}
	}

	blob, err := h.Blob(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", h.Name(), err)
	}
	return r.local(blob, OriginHandle, v), nil
}

func (r *Resolver) local(blob access.Blob, origin Origin, v *library.Video) Local {
	lease := r.leases.Register(blob)
	r.log.Debug("resolved local", "video_id", v.ID, "origin", origin, "file", blob.Name())
	return Local{Lease: lease, Name: blob.Name(), Origin: origin}
}

// courseFolder returns the course's raw folder name, or fallback when the
// course is unknown.
func (r *Resolver) courseFolder(courseID int64, fallback string) string {
	if r.courses == nil || courseID == 0 {
		return fallback
	}
	c, err := r.courses.GetCourse(courseID)
	if err != nil {
		if !errors.Is(err, library.ErrNotFound) {
			r.log.Warn("course lookup failed", "course_id", courseID, "error", err)
		}
		return fallback
	}
	if c.OriginalTitle == "" {
		return fallback
	}
	return c.OriginalTitle
}

// indexKey finds the index entry for folder, accepting a renamed copy.
func (r *Resolver) indexKey(folder string) (string, bool) {
	idx := r.session.Index
	if idx.Has(folder) {
		return folder, true
	}
	m, ok := access.MatchFolder(folder, idx.Folders())
	if !ok {
		return "", false
	}
	r.log.Debug("matched picked folder", "folder", folder, "picked", m.Folder, "score", m.Score)
	return m.Folder, true
}

func (r *Resolver) findInIndex(folder, rel string) (access.Blob, bool) {
	key, ok := r.indexKey(folder)
	if !ok {
		return nil, false
	}
	if key != folder {
		if rest, ok := strings.CutPrefix(rel, folder+"/"); ok {
			rel = key + "/" + rest
		}
	}
	return r.session.Index.FindByPath(key, rel)
}

// traverse walks root to the file at rel. root may be the library folder
// holding course folders, or the course folder itself. Any failure is a miss.
func (r *Resolver) traverse(ctx context.Context, root access.DirHandle, folder, rel string) (access.Blob, bool) {
	segs := splitPath(rel)
	if len(segs) > 0 && segs[0] == folder {
		segs = segs[1:]
	}
	if len(segs) == 0 {
		return nil, false
	}

	dir := root
	if folder != "" && root.Name() != folder {
		d, err := root.Dir(ctx, folder)
		if err != nil {
			r.log.Debug("traversal miss", "dir", folder, "error", err)
			return nil, false
		}
		dir = d
	}
	for _, seg := range segs[:len(segs)-1] {
		d, err := dir.Dir(ctx, seg)
		if err != nil {
			r.log.Debug("traversal miss", "dir", seg, "error", err)
			return nil, false
		}
		dir = d
	}

	fh, err := dir.File(ctx, segs[len(segs)-1])
	if err != nil {
		r.log.Debug("traversal miss", "file", segs[len(segs)-1], "error", err)
		return nil, false
	}
	blob, err := fh.Blob(ctx)
	if err != nil {
		r.log.Debug("traversal miss", "file", fh.Name(), "error", err)
		return nil, false
	}
	return blob, true
}

func splitPath(rel string) []string {
	rel = strings.Trim(path.Clean(strings.ReplaceAll(rel, `\`, "/")), "/")
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(rel, "/")
}

func firstSegment(rel string) string {
	segs := splitPath(rel)
	if len(segs) < 2 {
		return ""
	}
	return segs[0]
}
