// internal/api/v1/api_test.go
package v1

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reprise/internal/access"
	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/media"
	"github.com/vmunix/reprise/internal/migrations"
	"github.com/vmunix/reprise/internal/player"
	"github.com/vmunix/reprise/internal/resolve"
)

const mediaBase = "http://reprise.test/media"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(db), "apply schema")
	return db
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	store   *library.Store
	bus     *events.Bus
	player  *player.Controller
	session *access.Session
}

// newTestEnv wires the server over real stores. Cleanups run server first,
// then the player, then the bus.
func newTestEnv(t *testing.T, configure ...func(*ServerDeps)) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	log := testLogger()

	store := library.NewStore(db)
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, log)
	t.Cleanup(func() { _ = bus.Close() })

	session := access.NewSession(access.NewPermissionCache(store), access.StaticPrompter(true), access.WithLogger(log))
	registry := media.NewRegistry(mediaBase, log)
	ctrl, err := player.New(player.Deps{
		Resolver:  resolve.New(store, session, registry, log),
		Store:     store,
		Playlist:  store,
		Transport: NewTransport(bus, log),
		Bus:       bus,
	}, player.DefaultSettings(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close() })

	deps := ServerDeps{
		Library:  store,
		Player:   ctrl,
		Session:  session,
		Media:    registry,
		Bus:      bus,
		EventLog: eventLog,
	}
	for _, fn := range configure {
		fn(&deps)
	}
	srv, err := New(deps, Config{Version: "test"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	return &testEnv{srv: srv, handler: srv.Handler(), store: store, bus: bus, player: ctrl, session: session}
}

// do sends a request through the router. A string body is sent as is,
// anything else as JSON.
func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) snapshot(t *testing.T) player.Snapshot {
	t.Helper()
	w := e.do(t, http.MethodGet, "/api/v1/player", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap player.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func (e *testEnv) waitPhase(t *testing.T, phase player.Phase) player.Snapshot {
	t.Helper()
	var snap player.Snapshot
	require.Eventually(t, func() bool {
		snap = e.player.Snapshot()
		return snap.Phase == phase
	}, 5*time.Second, 5*time.Millisecond, "phase never reached %s", phase)
	return snap
}

// importCourse creates a course folder with the given files and imports it.
// It returns the course and the folder's path.
func (e *testEnv) importCourse(t *testing.T, folder string, handles bool, files ...string) (courseResponse, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), folder)
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("video bytes of "+f), 0o644))
	}
	w := e.do(t, http.MethodPost, "/api/v1/courses", importRequest{Path: dir, Handles: &handles})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp courseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp, dir
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNew_MissingDependency(t *testing.T) {
	_, err := New(ServerDeps{}, Config{}, nil)
	require.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "library store")
}

func TestListCourses_Empty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/courses", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp listCoursesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Total)
}

func TestImportCourse(t *testing.T) {
	env := newTestEnv(t)

	course, dir := env.importCourse(t, "Go Basics", false, "02 Types.mp4", "01 Intro.mp4", "notes.txt")
	assert.Equal(t, "Go Basics", course.OriginalTitle)
	require.Len(t, course.Videos, 2)
	assert.Equal(t, "Go Basics/01 Intro.mp4", course.Videos[0].RelativePath)
	assert.Equal(t, 1, course.Videos[0].Position)
	assert.False(t, course.Videos[0].Remote)

	w := env.do(t, http.MethodGet, "/api/v1/courses", nil)
	var list listCoursesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	// Importing the same folder again is a conflict.
	w = env.do(t, http.MethodPost, "/api/v1/courses", importRequest{Path: dir})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE", decodeError(t, w).Code)
}

func TestImportCourse_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/courses", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, w).Code)

	w = env.do(t, http.MethodPost, "/api/v1/courses", importRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_PATH", decodeError(t, w).Code)
}

func TestGetCourse(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.importCourse(t, "Rust", false, "a.mp4", "b.mkv")

	w := env.do(t, http.MethodGet, "/api/v1/courses/"+itoa(course.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp courseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Rust", resp.Title)
	assert.Len(t, resp.Videos, 2)

	w = env.do(t, http.MethodGet, "/api/v1/courses/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/courses/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeError(t, w).Code)
}

func TestDeleteCourse(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.importCourse(t, "Old", false, "a.mp4")

	w := env.do(t, http.MethodDelete, "/api/v1/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deleting is idempotent.
	w = env.do(t, http.MethodDelete, "/api/v1/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetAndDeleteVideo(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.importCourse(t, "Course", false, "a.mp4")
	id := course.Videos[0].ID

	w := env.do(t, http.MethodGet, "/api/v1/videos/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v videoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "a.mp4", v.FileName)
	assert.False(t, v.HasCaptions)

	w = env.do(t, http.MethodDelete, "/api/v1/videos/"+itoa(id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/videos/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatus(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.importCourse(t, "Course", false, "a.mp4")

	w := env.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp statusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 1, resp.Courses)
	assert.Equal(t, "idle", resp.Player)
	assert.False(t, resp.Transcription)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reprise_media_leases_active")
}

func TestPlayer_LoadLocalVideoAndServeBytes(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.importCourse(t, "Go Basics", true, "01 Intro.mp4")
	id := course.Videos[0].ID

	w := env.do(t, http.MethodPost, "/api/v1/player/load", loadRequest{VideoID: id})
	require.Equal(t, http.StatusAccepted, w.Code)

	snap := env.waitPhase(t, player.PhaseReady)
	assert.Equal(t, id, snap.VideoID)
	assert.Equal(t, course.ID, snap.CourseID)
	assert.Equal(t, "local", snap.SourceKind)
	require.True(t, strings.HasPrefix(snap.SourceURL, mediaBase+"/"), snap.SourceURL)

	w = env.do(t, http.MethodGet, "/media/"+path.Base(snap.SourceURL), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video bytes of 01 Intro.mp4", w.Body.String())

	w = env.do(t, http.MethodGet, "/media/not-a-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayer_LoadErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/player/load", loadRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/player/load", loadRequest{VideoID: 42})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayer_PlaybackRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.importCourse(t, "Go Basics", true, "01 Intro.mp4")
	id := course.Videos[0].ID
	commands := env.bus.Subscribe(events.EventPlayerCommand, 16)

	env.do(t, http.MethodPost, "/api/v1/player/load", loadRequest{VideoID: id})
	env.waitPhase(t, player.PhaseReady)

	w := env.do(t, http.MethodPost, "/api/v1/player/media", mediaEventRequest{Event: "durationchange", Value: 100})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/player/play", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap player.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.State.Playing)
	assert.Equal(t, 100.0, snap.State.Duration)

	select {
	case e := <-commands:
		cmd := e.(*events.PlayerCommand)
		assert.Equal(t, "play", cmd.Command)
	case <-time.After(time.Second):
		t.Fatal("no player command published")
	}

	env.do(t, http.MethodPost, "/api/v1/player/media", mediaEventRequest{Event: "timeupdate", Value: 40})
	w = env.do(t, http.MethodPost, "/api/v1/player/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Pausing saves progress in the background.
	require.Eventually(t, func() bool {
		v, err := env.store.GetVideo(id)
		return err == nil && v.LastPosition == 40
	}, 5*time.Second, 5*time.Millisecond)
	v, err := env.store.GetVideo(id)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, v.WatchProgress, 1e-9)
}

func TestPlayer_NeedsFolderThenPick(t *testing.T) {
	env := newTestEnv(t)
	course, dir := env.importCourse(t, "Go Basics", false, "mod1/01 Intro.mp4")

	env.do(t, http.MethodPost, "/api/v1/player/load", loadRequest{VideoID: course.Videos[0].ID})
	snap := env.waitPhase(t, player.PhaseNeedsFolderAccess)
	assert.Equal(t, "Go Basics", snap.NeedsFolder)
	assert.Equal(t, player.ViewFolderAccess, snap.View)

	w := env.do(t, http.MethodPost, "/api/v1/folders/pick", folderRequest{Path: dir})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pick pickResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pick))
	assert.Equal(t, "Go Basics", pick.Folder)
	assert.Equal(t, 1, pick.Files)
	assert.True(t, pick.Reloaded)

	snap = env.waitPhase(t, player.PhaseReady)
	assert.Equal(t, "local", snap.SourceKind)

	w = env.do(t, http.MethodGet, "/api/v1/folders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var folders []folderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &folders))
	require.Len(t, folders, 1)
	assert.Equal(t, "Go Basics", folders[0].Name)
	assert.True(t, folders[0].Indexed)
	assert.Equal(t, 1, folders[0].Files)
}

func TestPlayer_OpenRootResolvesByTraversal(t *testing.T) {
	env := newTestEnv(t)
	course, dir := env.importCourse(t, "Go Basics", false, "01 Intro.mp4")

	env.do(t, http.MethodPost, "/api/v1/player/load", loadRequest{VideoID: course.Videos[0].ID})
	env.waitPhase(t, player.PhaseNeedsFolderAccess)

	w := env.do(t, http.MethodPost, "/api/v1/folders/root", folderRequest{Path: filepath.Dir(dir)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp pickResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Reloaded)

	env.waitPhase(t, player.PhaseReady)
}

func TestPickFolder_Errors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/folders/pick", folderRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/folders/root", folderRequest{Path: filepath.Join(t.TempDir(), "missing")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OPEN_ROOT_FAILED", decodeError(t, w).Code)
}

func TestPlayer_ConflictsWhenNothingToDo(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/player/retry", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOT_RETRYABLE", decodeError(t, w).Code)

	w = env.do(t, http.MethodPost, "/api/v1/player/folder-selected", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPlayer_InputValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		path     string
		body     any
		wantCode string
	}{
		{"seek without target", "/api/v1/player/seek", seekRequest{}, "MISSING_TARGET"},
		{"seek percent out of range", "/api/v1/player/seek", map[string]int{"percent": 12}, "INVALID_PERCENT"},
		{"unsupported speed", "/api/v1/player/speed", speedRequest{Rate: 3}, "INVALID_SPEED"},
		{"unknown media event", "/api/v1/player/media", mediaEventRequest{Event: "stalled"}, "INVALID_EVENT"},
		{"bad json", "/api/v1/player/volume", "[", "INVALID_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestPlayer_ControlsBeforeLoad(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/player/speed", speedRequest{Rate: 1.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.5, env.snapshot(t).State.Speed)

	w = env.do(t, http.MethodPost, "/api/v1/player/key", keyRequest{Key: "k"})
	require.Equal(t, http.StatusOK, w.Code)
	var key keyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &key))
	assert.False(t, key.Handled, "keys are ignored until a video is ready")

	w = env.do(t, http.MethodPost, "/api/v1/player/boost/release", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var boost boostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &boost))
	assert.False(t, boost.Boosted)

	w = env.do(t, http.MethodGet, "/api/v1/player/captions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/player/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got settingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 0.95, got.CompletionThreshold)
	assert.Equal(t, "5s", got.ProgressInterval)

	w = env.do(t, http.MethodPut, "/api/v1/player/settings", map[string]any{
		"completion_threshold": 0.8,
		"auto_advance":         false,
		"progress_interval":    "10s",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 0.8, got.CompletionThreshold)
	assert.False(t, got.AutoAdvance)
	assert.True(t, got.ResumeOnReopen, "absent fields keep their value")
	assert.Equal(t, 10*time.Second, env.player.Settings().ProgressInterval)

	w = env.do(t, http.MethodPut, "/api/v1/player/settings", map[string]any{"completion_threshold": 1.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPut, "/api/v1/player/settings", map[string]any{"progress_interval": "500ms"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0.8, env.player.Settings().CompletionThreshold)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
