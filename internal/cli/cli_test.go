package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/maestro/internal/config"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "maestro.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearSpotifyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SPOTIFY_CLIENT_ID", "MAESTRO_SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET", "MAESTRO_SPOTIFY_CLIENT_SECRET",
	} {
		t.Setenv(name, "")
	}
}

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestRootRequiresSpotifyClient(t *testing.T) {
	clearSpotifyEnv(t)
	path := writeConfig(t, "logging:\n  level: error\n")

	_, _, err := executeCLI(t, "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spotify.client_id is required")
}

func TestLoginRejectsUnknownBackend(t *testing.T) {
	clearSpotifyEnv(t)
	path := writeConfig(t, `
spotify:
  client_id: id
  client_secret: secret
interpreter:
  backend: telepathy
logging:
  level: error
`)

	_, _, err := executeCLI(t, "login", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown interpreter backend "telepathy"`)
}

func TestRootRejectsArguments(t *testing.T) {
	_, _, err := executeCLI(t, "play", "something")
	require.Error(t, err)
}

func TestWireAppWithoutAudioTools(t *testing.T) {
	clearSpotifyEnv(t)
	path := writeConfig(t, `
spotify:
  client_id: id
  client_secret: secret
  market: PL
interpreter:
  backend: local
capture:
  recorder_command: maestro-test-missing-recorder
tts:
  enabled: true
  backend: piper
  player_command: maestro-test-missing-player
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	var out bytes.Buffer
	a, err := wireApp(cfg, &out)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.Nil(t, a.capture, "capture needs a recorder")
	assert.Nil(t, a.synth, "speech needs a player")
	assert.Equal(t, "local", a.interp.Name())
	assert.NotNil(t, a.dispatcher)
	assert.False(t, a.session.Muted())
}

func TestWireAppWithAudioTools(t *testing.T) {
	clearSpotifyEnv(t)
	path := writeConfig(t, `
spotify:
  client_id: id
  client_secret: secret
interpreter:
  backend: openai
  openai:
    api_key: sk-test
capture:
  recorder_command: sh
tts:
  enabled: true
  backend: piper
  player_command: sh
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	a, err := wireApp(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.NotNil(t, a.capture)
	require.NotNil(t, a.synth)
	assert.Equal(t, "piper", a.synth.Name())
	assert.Equal(t, "openai", a.interp.Name())
}
