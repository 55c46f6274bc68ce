package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is written by the session goroutines and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// tokenServer answers refresh grants once release is closed.
func tokenServer(t *testing.T, release <-chan struct{}) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/api/token"
}

// sessionConfig writes stored credentials and a config that refreshes them
// against tokenURL.
func sessionConfig(t *testing.T, tokenURL, extra string) string {
	t.Helper()

	dir := t.TempDir()
	credPath := filepath.Join(dir, "spotify_tokens.json")
	require.NoError(t, os.WriteFile(credPath, []byte(`{"access_token":"stale","refresh_token":"refresh-1"}`), 0o600))

	return writeConfig(t, fmt.Sprintf(`
spotify:
  client_id: id
  client_secret: secret
  token_url: %s
credentials:
  path: %s
interpreter:
  backend: local
capture:
  recorder_command: maestro-test-missing-recorder
tts:
  enabled: false
ui:
  spinner: false
logging:
  level: info
%s`, tokenURL, credPath, extra))
}

type session struct {
	stdin  *io.PipeWriter
	stdout *syncBuffer
	stderr *syncBuffer
	done   chan error
}

func startSession(t *testing.T, args ...string) *session {
	t.Helper()

	in, stdin := io.Pipe()
	s := &session{stdin: stdin, stdout: &syncBuffer{}, stderr: &syncBuffer{}, done: make(chan error, 1)}
	t.Cleanup(func() { _ = stdin.Close() })

	root := newRootCmd()
	root.SetIn(in)
	root.SetOut(s.stdout)
	root.SetErr(s.stderr)
	root.SetArgs(args)

	go func() { s.done <- root.Execute() }()
	return s
}

func (s *session) exit(t *testing.T) {
	t.Helper()

	_, err := io.WriteString(s.stdin, "exit\n")
	require.NoError(t, err)

	select {
	case err := <-s.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after exit")
	}
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestSessionSurvivesBusyServerPorts(t *testing.T) {
	clearSpotifyEnv(t)

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })
	port := busy.Addr().(*net.TCPAddr).Port

	release := make(chan struct{})
	close(release)
	path := sessionConfig(t, tokenServer(t, release), fmt.Sprintf(`
remote:
  http:
    enabled: true
    port: %d
server:
  health_port: %d
`, port, port))

	s := startSession(t, "--config", path)

	require.Eventually(t, func() bool {
		logs := s.stderr.String()
		return strings.Contains(logs, "health server failed") && strings.Contains(logs, "remote transport failed")
	}, 5*time.Second, 10*time.Millisecond, "both servers should fail to bind")

	select {
	case err := <-s.done:
		t.Fatalf("session ended without exit: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Contains(t, s.stdout.String(), readyGreeting)

	s.exit(t)
}

func TestReadinessFollowsFirstToken(t *testing.T) {
	clearSpotifyEnv(t)

	port := freePort(t)
	release := make(chan struct{})
	path := sessionConfig(t, tokenServer(t, release), fmt.Sprintf(`
server:
  health_port: %d
`, port))

	s := startSession(t, "--config", path)
	readyz := fmt.Sprintf("http://127.0.0.1:%d/readyz", port)

	status := func() int {
		resp, err := http.Get(readyz)
		if err != nil {
			return 0
		}
		defer resp.Body.Close()
		return resp.StatusCode
	}

	require.Eventually(t, func() bool {
		return status() == http.StatusServiceUnavailable
	}, 5*time.Second, 10*time.Millisecond, "health should answer not ready while the token is pending")

	close(release)

	require.Eventually(t, func() bool {
		return status() == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	s.exit(t)
}
