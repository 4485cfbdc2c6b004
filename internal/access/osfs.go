package access

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidName is returned for child names that would escape a directory.
var ErrInvalidName = errors.New("invalid entry name")

type osBlob struct {
	path string
	info fs.FileInfo
}

// NewFileBlob stats path and returns it as a Blob.
func NewFileBlob(path string) (Blob, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	return &osBlob{path: path, info: info}, nil
}

func (b *osBlob) Name() string                     { return b.info.Name() }
func (b *osBlob) Size() int64                      { return b.info.Size() }
func (b *osBlob) ModTime() time.Time               { return b.info.ModTime() }
func (b *osBlob) Open() (io.ReadSeekCloser, error) { return os.Open(b.path) }

// OSFile is a FileHandle backed by a path on the local filesystem.
type OSFile struct {
	path   string
	grants *PermissionCache
	prompt Prompter
}

// NewOSFile creates a handle for path. prompt may be nil, which denies
// every request.
func NewOSFile(path string, grants *PermissionCache, prompt Prompter) *OSFile {
	return &OSFile{path: filepath.Clean(path), grants: grants, prompt: prompt}
}

// Name returns the file's base name.
func (f *OSFile) Name() string { return filepath.Base(f.path) }

// Path returns the file's path.
func (f *OSFile) Path() string { return f.path }

// QueryPermission reports the session grant for the file.
func (f *OSFile) QueryPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionPrompt, err
	}
	return f.grants.Query(f.path), nil
}

// RequestPermission prompts for access. An abandoned prompt is denial.
// A confirmed prompt is still denied when the OS refuses to open the file.
func (f *OSFile) RequestPermission(ctx context.Context) (Permission, error) {
	if f.grants.Query(f.path) == PermissionGranted {
		return PermissionGranted, nil
	}
	if f.prompt == nil {
		return PermissionDenied, nil
	}
	ok, err := f.prompt.Confirm(ctx, f.path)
	if err != nil || !ok {
		return PermissionDenied, nil
	}

	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrPermission) {
		return PermissionDenied, nil
	}
	if err == nil {
		_ = file.Close()
	}
	f.grants.Grant(f.path)
	return PermissionGranted, nil
}

// Blob stats the file. It fails with fs.ErrNotExist once the file is gone.
func (f *OSFile) Blob(ctx context.Context) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewFileBlob(f.path)
}

// OSDir is a DirHandle backed by a local directory.
type OSDir struct {
	path   string
	grants *PermissionCache
	prompt Prompter
}

// NewOSDir creates a directory handle. Files opened through it share the
// session's grants.
func NewOSDir(path string, grants *PermissionCache, prompt Prompter) *OSDir {
	return &OSDir{path: filepath.Clean(path), grants: grants, prompt: prompt}
}

// Name returns the directory's base name.
func (d *OSDir) Name() string { return filepath.Base(d.path) }

// Path returns the directory's path.
func (d *OSDir) Path() string { return d.path }

// Entries lists immediate children.
func (d *OSDir) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	des, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", d.path, err)
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		kind := KindFile
		if de.IsDir() {
			kind = KindDirectory
		}
		entries = append(entries, Entry{Name: de.Name(), Kind: kind})
	}
	return entries, nil
}

func (d *OSDir) child(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return filepath.Join(d.path, name), nil
}

// Dir opens a named child directory.
func (d *OSDir) Dir(ctx context.Context, name string) (DirHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.child(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", p)
	}
	return NewOSDir(p, d.grants, d.prompt), nil
}

// File opens a named child file.
func (d *OSDir) File(ctx context.Context, name string) (FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.child(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", p)
	}
	return NewOSFile(p, d.grants, d.prompt), nil
}
