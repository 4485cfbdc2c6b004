// Package v1 implements the native REST API.
package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
)

// defaultMaxUpload bounds transcription uploads: ten minutes of 16kHz mono
// float32 PCM.
const defaultMaxUpload = 10 * 60 * 16000 * 4

// Config holds API server configuration.
type Config struct {
	Version string
	// MaxUploadBytes bounds PCM uploads to the transcription endpoint.
	MaxUploadBytes int64
	// ImportHandles records absolute file paths on imported videos.
	ImportHandles bool
}

// Server is the v1 API server.
type Server struct {
	deps ServerDeps
	cfg  Config
	log  *slog.Logger

	// ctx outlives requests; background transcription pipelines run on it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new v1 API server.
func New(deps ServerDeps, cfg Config, log *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		deps:   deps,
		cfg:    cfg,
		log:    log.With("component", "api"),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Close cancels running transcription pipelines and waits for them.
func (s *Server) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// Handler returns the router serving the API, media bytes and metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/media/{token}", s.deps.Media)
	r.Route("/api/v1", s.RegisterRoutes)
	return r
}

// RegisterRoutes registers API routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	// System
	r.Get("/status", s.getStatus)

	// Courses
	r.Get("/courses", s.listCourses)
	r.Post("/courses", s.importCourse)
	r.Get("/courses/{id}", s.getCourse)
	r.Delete("/courses/{id}", s.deleteCourse)

	// Videos
	r.Get("/videos/{id}", s.getVideo)
	r.Delete("/videos/{id}", s.deleteVideo)
	r.Get("/videos/{id}/captions", s.exportCaptions)
	r.Post("/videos/{id}/transcribe", s.requireTranscriber(s.transcribeVideo))
	r.Get("/videos/{id}/events", s.requireEventLog(s.listVideoEvents))

	// Folders
	r.Get("/folders", s.listFolders)
	r.Post("/folders/pick", s.pickFolder)
	r.Post("/folders/root", s.openRoot)

	// Player
	r.Route("/player", func(r chi.Router) {
		r.Get("/", s.getPlayer)
		r.Post("/load", s.loadVideo)
		r.Post("/play", s.playerAction(s.deps.Player.Play))
		r.Post("/pause", s.playerAction(s.deps.Player.Pause))
		r.Post("/toggle", s.playerAction(s.deps.Player.TogglePlay))
		r.Post("/retry", s.playerCheck(s.deps.Player.Retry, "NOT_RETRYABLE", "Nothing to retry"))
		r.Post("/folder-selected", s.playerCheck(s.deps.Player.FolderSelected, "NO_FOLDER_REQUEST", "Player is not waiting for a folder"))
		r.Post("/cancel-advance", s.playerAction(s.deps.Player.CancelAdvance))
		r.Post("/resume/accept", s.playerAction(s.deps.Player.AcceptResume))
		r.Post("/resume/decline", s.playerAction(s.deps.Player.DeclineResume))
		r.Post("/boost/press", s.playerAction(s.deps.Player.BoostPress))
		r.Post("/boost/release", s.boostRelease)
		r.Post("/mute", s.playerAction(s.deps.Player.ToggleMute))
		r.Post("/captions", s.playerAction(s.deps.Player.ToggleCaptions))
		r.Get("/captions", s.playerCaptions)
		r.Post("/seek", s.seek)
		r.Post("/speed", s.setSpeed)
		r.Post("/volume", s.setVolume)
		r.Post("/key", s.handleKey)
		r.Post("/media", s.mediaEvent)
		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.updateSettings)
	})

	// Events
	r.Get("/events", s.requireEventLog(s.listEvents))
	r.Get("/events/stream", s.requireBus(s.streamEvents))
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeStoreError maps library errors to HTTP responses.
func writeStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", what+" not found")
	case errors.Is(err, library.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	return true
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		return 0, errors.New("missing path parameter: id")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// publish sends e on the bus when one is configured.
func (s *Server) publish(ctx context.Context, e events.Event) {
	if s.deps.Bus == nil {
		return
	}
	if err := s.deps.Bus.Publish(ctx, e); err != nil {
		s.log.Warn("failed to publish event", "type", e.EventType(), "error", err)
	}
}

type statusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Courses       int    `json:"courses"`
	ActiveLeases  int    `json:"active_leases"`
	IndexedFolder int    `json:"indexed_folders"`
	Grants        int    `json:"grants"`
	Player        string `json:"player"`
	Transcription bool   `json:"transcription"`
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	courses, err := s.deps.Library.ListCourses()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:        "ok",
		Version:       s.cfg.Version,
		Courses:       len(courses),
		ActiveLeases:  s.deps.Media.Active(),
		IndexedFolder: len(s.deps.Session.Index.Folders()),
		Grants:        s.deps.Session.Grants.Len(),
		Player:        string(s.deps.Player.Snapshot().Phase),
		Transcription: s.deps.Transcriber != nil,
	})
}
