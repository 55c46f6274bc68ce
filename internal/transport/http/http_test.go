package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/maestro/internal/message"
)

type recorder struct {
	mu  sync.Mutex
	got []message.Utterance
}

func (r *recorder) handle(_ context.Context, u message.Utterance) message.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, u)
	return message.Outcome{UtteranceID: u.ID, Utterance: u.Text, Action: "next_song", Success: true, Feedback: "Skipped."}
}

func (r *recorder) utterances() []message.Utterance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]message.Utterance(nil), r.got...)
}

func TestCommandAcceptsJSON(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	srv := httptest.NewServer(New(0).Handler(rec.handle))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/command", "application/json", strings.NewReader(`{"text": " next "}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out message.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, "Skipped.", out.Feedback)

	got := rec.utterances()
	require.Len(t, got, 1)
	assert.Equal(t, "next", got[0].Text)
	assert.Equal(t, message.SourceHTTP, got[0].Source)
	assert.Equal(t, got[0].ID, out.UtteranceID)
}

func TestCommandAcceptsPlainText(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	srv := httptest.NewServer(New(0).Handler(rec.handle))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/command", "text/plain; charset=utf-8", strings.NewReader("pauza"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := rec.utterances()
	require.Len(t, got, 1)
	assert.Equal(t, "pauza", got[0].Text)
}

func TestCommandRejectsBadBodies(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "malformed json", contentType: "application/json", body: `{"text":`},
		{name: "empty json text", contentType: "application/json", body: `{"text": "  "}`},
		{name: "empty text body", contentType: "text/plain", body: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := &recorder{}
			srv := httptest.NewServer(New(0).Handler(rec.handle))
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/command", tc.contentType, strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, rec.utterances())
		})
	}
}

func TestSwaggerDocIsServed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(New(0).Handler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"/command"`)
}

func TestListenStopsOnCancel(t *testing.T) {
	t.Parallel()

	tr := &Transport{addr: "127.0.0.1:0", ready: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- tr.Listen(ctx, (&recorder{}).handle)
	}()

	resp, err := http.Post("http://"+tr.Addr()+"/command", "text/plain", strings.NewReader("next"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}
