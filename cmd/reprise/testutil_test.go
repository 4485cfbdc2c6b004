package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockServer builds an httptest.Server that checks the request line and
// answers with a canned response.
type mockServer struct {
	t          *testing.T
	handler    http.HandlerFunc
	expectPath string
	expectMeth string
	expectQry  string
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	return &mockServer{t: t}
}

// Expect sets the expected method and API path (without the /api/v1 prefix).
func (m *mockServer) Expect(method, path string) *mockServer {
	m.expectMeth = method
	m.expectPath = "/api/v1" + path
	return m
}

// ExpectQuery sets the expected raw query string.
func (m *mockServer) ExpectQuery(q string) *mockServer {
	m.expectQry = q
	return m
}

func (m *mockServer) Handler(h http.HandlerFunc) *mockServer {
	m.handler = h
	return m
}

func (m *mockServer) RespondJSON(v any) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(m.t, w, http.StatusOK, v)
	}
	return m
}

func (m *mockServer) RespondStatus(code int) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
	return m
}

// RespondError answers with the daemon's {error, code} body.
func (m *mockServer) RespondError(status int, code, message string) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(m.t, w, status, map[string]string{"error": message, "code": code})
	}
	return m
}

// Build starts the server and points serverURL at it until the test ends.
func (m *mockServer) Build() *httptest.Server {
	m.t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.expectPath != "" {
			assert.Equal(m.t, m.expectPath, r.URL.Path, "unexpected request path")
		}
		if m.expectMeth != "" {
			assert.Equal(m.t, m.expectMeth, r.Method, "unexpected request method")
		}
		if m.expectQry != "" {
			assert.Equal(m.t, m.expectQry, r.URL.RawQuery, "unexpected query")
		}
		if m.handler != nil {
			m.handler(w, r)
		}
	}))
	m.t.Cleanup(srv.Close)

	old := serverURL
	serverURL = srv.URL
	m.t.Cleanup(func() { serverURL = old })
	return srv
}

func respondJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON response: %v", err)
	}
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		jsonOutput = false
		configPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig writes a config whose database lives in the test's temp dir.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[database]\npath = \"" + filepath.ToSlash(filepath.Join(dir, "reprise.db")) + "\"\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
