package access

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmunix/reprise/internal/library"
)

// Session is the process-scoped access context shared by every video played
// in one run: the fallback file index, the permission grants, and the
// optional root folder capability.
type Session struct {
	Index  *FileIndex
	Grants *PermissionCache

	mu     sync.RWMutex
	root   DirHandle
	prompt Prompter
	open   func(path string) FileHandle
	log    *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHandleFactory overrides how direct file handles are created.
func WithHandleFactory(f func(path string) FileHandle) SessionOption {
	return func(s *Session) { s.open = f }
}

// WithLogger sets the session logger.
func WithLogger(log *slog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession creates a session. prompt answers permission requests for
// direct handles; nil denies them.
func NewSession(grants *PermissionCache, prompt Prompter, opts ...SessionOption) *Session {
	if grants == nil {
		grants = NewPermissionCache(nil)
	}
	s := &Session{
		Index:  NewFileIndex(),
		Grants: grants,
		prompt: prompt,
		log:    slog.Default(),
	}
	s.open = func(path string) FileHandle { return NewOSFile(path, s.Grants, s.prompt) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileHandle returns a handle for a stored handle path.
func (s *Session) FileHandle(path string) FileHandle {
	return s.open(path)
}

// Root returns the root folder capability, or nil.
func (s *Session) Root() DirHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// SetRoot replaces the root folder capability. nil clears it.
func (s *Session) SetRoot(d DirHandle) {
	s.mu.Lock()
	s.root = d
	s.mu.Unlock()
}

// OpenRoot grants dir and makes it the root folder capability.
func (s *Session) OpenRoot(ctx context.Context, dir string) (DirHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open root %s: not a directory", abs)
	}

	s.Grants.Grant(abs)
	root := NewOSDir(abs, s.Grants, s.prompt)
	s.SetRoot(root)
	if err := s.Grants.RememberFolder(root.Name(), abs); err != nil {
		s.log.Warn("failed to remember root folder", "path", abs, "error", err)
	}
	s.log.Info("root folder opened", "path", abs)
	return root, nil
}

// PickResult describes a folder added to the fallback index.
type PickResult struct {
	Folder string
	Path   string
	Files  int
}

// PickFolder indexes every video below dir under the folder name key
// (the directory's base name when key is empty), grants dir and remembers
// its identity. It replaces any previous entry for that key.
func (s *Session) PickFolder(ctx context.Context, dir, key string) (PickResult, error) {
	res, err := s.IndexFolder(ctx, dir, key)
	if err != nil {
		return PickResult{}, err
	}

	s.Grants.Grant(res.Path)
	if err := s.Grants.RememberFolder(res.Folder, res.Path); err != nil {
		s.log.Warn("failed to remember folder", "folder", res.Folder, "error", err)
	}
	s.log.Info("folder picked", "folder", res.Folder, "path", res.Path, "files", res.Files)
	return res, nil
}

// IndexFolder adds the videos below dir to the fallback index under key
// without granting access to dir.
func (s *Session) IndexFolder(ctx context.Context, dir, key string) (PickResult, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return PickResult{}, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if key == "" {
		key = filepath.Base(abs)
	}

	rels, err := library.FindVideos(abs)
	if err != nil {
		return PickResult{}, fmt.Errorf("index folder %s: %w", abs, err)
	}

	files := make([]IndexedFile, 0, len(rels))
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return PickResult{}, err
		}
		blob, err := NewFileBlob(filepath.Join(abs, filepath.FromSlash(rel)))
		if err != nil {
			s.log.Warn("skipping unreadable file", "folder", key, "file", rel, "error", err)
			continue
		}
		files = append(files, IndexedFile{RelPath: key + "/" + rel, Blob: blob})
	}

	s.Index.Put(key, files)
	s.log.Debug("folder indexed", "folder", key, "path", abs, "files", len(files))
	return PickResult{Folder: key, Path: abs, Files: len(files)}, nil
}

// RestoreFolders re-indexes the folders remembered from earlier sessions.
// Folders that no longer exist are skipped. No grants are issued.
func (s *Session) RestoreFolders(ctx context.Context) ([]PickResult, error) {
	known, err := s.Grants.KnownFolders()
	if err != nil {
		return nil, fmt.Errorf("list remembered folders: %w", err)
	}

	var restored []PickResult
	for _, f := range known {
		if err := ctx.Err(); err != nil {
			return restored, err
		}
		if info, err := os.Stat(f.Path); err != nil || !info.IsDir() {
			s.log.Info("remembered folder unavailable", "folder", f.Name, "path", f.Path)
			continue
		}
		res, err := s.IndexFolder(ctx, f.Path, f.Name)
		if err != nil {
			s.log.Warn("failed to restore folder", "folder", f.Name, "error", err)
			continue
		}
		restored = append(restored, res)
	}
	return restored, nil
}

// Clear tears down the session: index, grants and root.
func (s *Session) Clear() {
	s.Index.Clear()
	s.Grants.Clear()
	s.SetRoot(nil)
	s.log.Info("access session cleared")
}
