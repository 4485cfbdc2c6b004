// Package media hands out transient byte-access URLs for local media.
//
// A Lease ties a URL token to an Opener until it is released. Released
// tokens are never reissued and stop serving bytes immediately. The registry
// remembers only the most recent releases; older tokens are simply unknown.
package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrReleased is returned when a lease is used after Release.
	ErrReleased = errors.New("media lease released")

	// ErrUnknownToken is returned for tokens the registry never issued.
	ErrUnknownToken = errors.New("unknown media token")
)

// Opener provides the bytes behind a lease.
type Opener interface {
	Name() string
	ModTime() time.Time
	Open() (io.ReadSeekCloser, error)
}

// recentReleases bounds how many released tokens answer 410 Gone.
const recentReleases = 256

// Registry issues and serves leases.
type Registry struct {
	mu       sync.Mutex
	baseURL  string
	active   map[string]Opener
	released map[string]struct{}
	order    []string // released tokens, oldest first
	log      *slog.Logger
}

// NewRegistry creates a registry whose URLs are rooted at baseURL
// (for example "http://localhost:8585/media").
func NewRegistry(baseURL string, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		baseURL:  strings.TrimRight(baseURL, "/"),
		active:   make(map[string]Opener),
		released: make(map[string]struct{}),
		log:      log,
	}
}

// Lease is a transient URL for one opener.
type Lease struct {
	token    string
	url      string
	reg      *Registry
	released atomic.Bool
}

// Register issues a new lease for o.
func (r *Registry) Register(o Opener) *Lease {
	token := uuid.NewString()

	r.mu.Lock()
	r.active[token] = o
	r.mu.Unlock()

	r.log.Debug("lease issued", "token", token, "name", o.Name())
	return &Lease{token: token, url: r.baseURL + "/" + token, reg: r}
}

// Token returns the lease's token.
func (l *Lease) Token() string { return l.token }

// URL returns the lease's URL.
func (l *Lease) URL() string { return l.url }

// Release revokes the lease. A second release returns ErrReleased.
func (l *Lease) Release() error {
	if !l.released.CompareAndSwap(false, true) {
		return fmt.Errorf("release %s: %w", l.token, ErrReleased)
	}
	return l.reg.release(l.token)
}

// Open opens the leased bytes.
func (l *Lease) Open() (io.ReadSeekCloser, error) {
	if l.released.Load() {
		return nil, ErrReleased
	}
	o, err := l.reg.lookup(l.token)
	if err != nil {
		return nil, err
	}
	return o.Open()
}

func (r *Registry) release(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.released[token]; ok {
		return fmt.Errorf("release %s: %w", token, ErrReleased)
	}
	if _, ok := r.active[token]; !ok {
		return fmt.Errorf("release %s: %w", token, ErrUnknownToken)
	}
	delete(r.active, token)
	r.released[token] = struct{}{}
	r.order = append(r.order, token)
	if len(r.order) > recentReleases {
		delete(r.released, r.order[0])
		r.order = r.order[1:]
	}
	r.log.Debug("lease released", "token", token)
	return nil
}

func (r *Registry) lookup(token string) (Opener, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.active[token]; ok {
		return o, nil
	}
	if _, ok := r.released[token]; ok {
		return nil, ErrReleased
	}
	return nil, ErrUnknownToken
}

// Active returns the number of unreleased leases.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// ServeHTTP serves the bytes for the token in the last path segment.
// Range requests are supported.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	token := req.URL.Path[strings.LastIndex(req.URL.Path, "/")+1:]

	o, err := r.lookup(token)
	switch {
	case errors.Is(err, ErrReleased):
		http.Error(w, "media released", http.StatusGone)
		return
	case err != nil:
		http.NotFound(w, req)
		return
	}

	f, err := o.Open()
	if err != nil {
		r.log.Error("open media failed", "token", token, "name", o.Name(), "error", err)
		http.Error(w, "media unavailable", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	http.ServeContent(w, req, o.Name(), o.ModTime(), f)
}
