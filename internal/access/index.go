package access

import (
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// IndexedFile is a file picked through a bulk folder pick, keyed by its path
// relative to the picked folder's parent ("CourseX/Mod1/v1.mp4").
type IndexedFile struct {
	RelPath string
	Blob    Blob
}

// FileIndex maps course folder names to the files picked for them.
type FileIndex struct {
	mu      sync.RWMutex
	folders map[string][]IndexedFile
}

// NewFileIndex creates an empty index.
func NewFileIndex() *FileIndex {
	return &FileIndex{folders: make(map[string][]IndexedFile)}
}

// normalizePath folds Unicode normalization and separators so names read
// from disk (often NFD on macOS) match names stored at import (NFC).
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return norm.NFC.String(strings.TrimPrefix(p, "/"))
}

// Put replaces the file list for folder.
func (x *FileIndex) Put(folder string, files []IndexedFile) {
	entry := make([]IndexedFile, len(files))
	for i, f := range files {
		entry[i] = IndexedFile{RelPath: path.Clean(normalizePath(f.RelPath)), Blob: f.Blob}
	}

	x.mu.Lock()
	x.folders[normalizePath(folder)] = entry
	x.mu.Unlock()
}

// Remove drops a folder's entry.
func (x *FileIndex) Remove(folder string) {
	x.mu.Lock()
	delete(x.folders, normalizePath(folder))
	x.mu.Unlock()
}

// Clear drops every entry.
func (x *FileIndex) Clear() {
	x.mu.Lock()
	x.folders = make(map[string][]IndexedFile)
	x.mu.Unlock()
}

// Has reports whether folder has been indexed.
func (x *FileIndex) Has(folder string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.folders[normalizePath(folder)]
	return ok
}

// Folders returns the indexed folder names, sorted.
func (x *FileIndex) Folders() []string {
	x.mu.RLock()
	names := make([]string, 0, len(x.folders))
	for name := range x.folders {
		names = append(names, name)
	}
	x.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of files indexed for folder.
func (x *FileIndex) Len(folder string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.folders[normalizePath(folder)])
}

// FindByPath returns the file whose relative path equals relPath.
func (x *FileIndex) FindByPath(folder, relPath string) (Blob, bool) {
	want := path.Clean(normalizePath(relPath))

	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, f := range x.folders[normalizePath(folder)] {
		if f.RelPath == want {
			return f.Blob, true
		}
	}
	return nil, false
}

// FindByName returns the first file named name, either as the whole relative
// path or as its last segment.
func (x *FileIndex) FindByName(folder, name string) (Blob, bool) {
	want := normalizePath(name)
	if want == "" {
		return nil, false
	}
	suffix := "/" + want

	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, f := range x.folders[normalizePath(folder)] {
		if f.RelPath == want || strings.HasSuffix(f.RelPath, suffix) {
			return f.Blob, true
		}
	}
	return nil, false
}
