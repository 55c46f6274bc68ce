package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/maestro/internal/playback"
)

const trackJSON = `{"id":"t1","uri":"spotify:track:t1","name":"Bohemian Rhapsody","artists":[{"id":"a1","name":"Queen"}]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewFactory(server.URL + "/v1")("token-123").(*Client)
}

func TestCurrentlyPlayingMapsItem(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me/player/currently-playing", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"is_playing":true,"item":`+trackJSON+`}`)
	})

	snap, err := client.CurrentlyPlaying(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Track)
	assert.True(t, snap.IsPlaying)
	assert.Equal(t, playback.Track{
		ID:      "t1",
		URI:     "spotify:track:t1",
		Name:    "Bohemian Rhapsody",
		Artists: []playback.Artist{{ID: "a1", Name: "Queen"}},
	}, *snap.Track)
}

func TestCurrentlyPlayingNoContent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	snap, err := client.CurrentlyPlaying(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.Track)
}

func TestStateWithoutActiveDevice(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	st, err := client.State(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Device)
}

func TestStateReportsDeviceVolume(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me/player", r.URL.Path)
		_, _ = io.WriteString(w, `{"is_playing":true,"device":{"id":"d1","is_active":true,"name":"Living Room","type":"TV","volume_percent":42}}`)
	})

	st, err := client.State(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Device)
	assert.Equal(t, 42, st.Device.Volume)
	assert.Equal(t, "TV", st.Device.Type)
}

func TestDevicesMapsFields(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me/player/devices", r.URL.Path)
		_, _ = io.WriteString(w, `{"devices":[
			{"id":"d1","is_active":false,"name":"Laptop","type":"Computer","volume_percent":30},
			{"id":"d2","is_active":true,"name":"Pixel","type":"Smartphone","volume_percent":80}]}`)
	})

	devices, err := client.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []playback.Device{
		{ID: "d1", Name: "Laptop", Type: "Computer", Active: false, Volume: 30},
		{ID: "d2", Name: "Pixel", Type: "Smartphone", Active: true, Volume: 80},
	}, devices)
}

func TestSearchTracksSendsQueryAndLimit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Bohemian Rhapsody Queen", q.Get("q"))
		assert.Equal(t, "track", q.Get("type"))
		assert.Equal(t, "1", q.Get("limit"))
		_, _ = io.WriteString(w, `{"tracks":{"items":[`+trackJSON+`]}}`)
	})

	tracks, err := client.SearchTracks(context.Background(), "Bohemian Rhapsody Queen", 1)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "spotify:track:t1", tracks[0].URI)
}

func TestSearchPlaylistsSkipsNullEntries(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "playlist", r.URL.Query().Get("type"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"playlists":{"items":[null,
			{"id":"p1","uri":"spotify:playlist:p1","name":"Calm Evening","owner":{"display_name":"spotify"}}]}}`)
	})

	playlists, err := client.SearchPlaylists(context.Background(), "calm", 5)
	require.NoError(t, err)
	assert.Equal(t, []playback.Playlist{{ID: "p1", URI: "spotify:playlist:p1", Name: "Calm Evening", Owner: "spotify"}}, playlists)
}

func TestPlayTracksTargetsDevice(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/me/player/play", r.URL.Path)
		assert.Equal(t, "d2", r.URL.Query().Get("device_id"))

		var body struct {
			URIs []string `json:"uris"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"spotify:track:t1"}, body.URIs)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.PlayTracks(context.Background(), "d2", "spotify:track:t1"))
}

func TestPlayContextSendsContextURI(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ContextURI string `json:"context_uri"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "spotify:playlist:p1", body.ContextURI)
		assert.Empty(t, r.URL.Query().Get("device_id"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.PlayContext(context.Background(), "", "spotify:playlist:p1"))
}

func TestIsSavedAndSave(t *testing.T) {
	t.Parallel()

	var saved bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/me/tracks/contains":
			assert.Equal(t, "t1", r.URL.Query().Get("ids"))
			_, _ = io.WriteString(w, `[false]`)
		case "/v1/me/tracks":
			assert.Equal(t, http.MethodPut, r.Method)
			saved = true
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})

	ok, err := client.IsSaved(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Save(context.Background(), "t1"))
	assert.True(t, saved)
}

func TestSetVolumeSendsPercent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me/player/volume", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("volume_percent"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.SetVolume(context.Background(), 30))
}

func TestErrorsAreTranslated(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		status       int
		body         string
		unauthorized bool
	}{
		{name: "expired token", status: http.StatusUnauthorized, body: `{"error":{"status":401,"message":"The access token expired"}}`, unauthorized: true},
		{name: "no active device", status: http.StatusNotFound, body: `{"error":{"status":404,"message":"Player command failed: No active device found"}}`},
		{name: "premium required", status: http.StatusForbidden, body: `{"error":{"status":403,"message":"Player command failed: Premium required"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			err := client.Next(context.Background())
			require.Error(t, err)

			var statusErr *playback.StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tc.status, statusErr.Status)
			assert.Equal(t, "next", statusErr.Op)
			assert.Equal(t, tc.unauthorized, errors.Is(err, playback.ErrUnauthorized))
		})
	}
}
