package access

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/reprise/internal/library"
)

// FolderStore persists folder identities across restarts.
type FolderStore interface {
	SaveFolder(f library.Folder) error
	ListFolders() ([]library.Folder, error)
}

// PermissionCache holds the read grants of the current session. Grants are
// never persisted; only folder identities are, through the FolderStore.
type PermissionCache struct {
	mu     sync.RWMutex
	grants map[string]struct{}
	store  FolderStore // may be nil
}

// NewPermissionCache creates an empty cache. store may be nil.
func NewPermissionCache(store FolderStore) *PermissionCache {
	return &PermissionCache{
		grants: make(map[string]struct{}),
		store:  store,
	}
}

// Query reports whether path, or a folder containing it, was granted.
func (c *PermissionCache) Query(path string) Permission {
	path = filepath.Clean(path)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for p := path; ; {
		if _, ok := c.grants[p]; ok {
			return PermissionGranted
		}
		parent := filepath.Dir(p)
		if parent == p {
			return PermissionPrompt
		}
		p = parent
	}
}

// Grant records read access to path and everything below it.
func (c *PermissionCache) Grant(path string) {
	c.mu.Lock()
	c.grants[filepath.Clean(path)] = struct{}{}
	c.mu.Unlock()
}

// Revoke removes a grant for path and any grants below it.
func (c *PermissionCache) Revoke(path string) {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)

	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.grants {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(c.grants, p)
		}
	}
}

// Len returns the number of grants.
func (c *PermissionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grants)
}

// Clear drops every grant.
func (c *PermissionCache) Clear() {
	c.mu.Lock()
	c.grants = make(map[string]struct{})
	c.mu.Unlock()
}

// RememberFolder persists the identity of a picked folder.
func (c *PermissionCache) RememberFolder(name, path string) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.SaveFolder(library.Folder{Name: name, Path: path, GrantedAt: time.Now()}); err != nil {
		return fmt.Errorf("remember folder %q: %w", name, err)
	}
	return nil
}

// KnownFolders returns folder identities remembered from earlier sessions.
// They carry no grant; the user must pick them again.
func (c *PermissionCache) KnownFolders() ([]library.Folder, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.ListFolders()
}
