package piper

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/maestro/internal/config"
	"github.com/nadzzz/maestro/internal/tts"
)

// fakeServer answers one synthesize request with the given events.
func fakeServer(t *testing.T, reply func(conn net.Conn, req event)) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		req, _, err := readEvent(bufio.NewReader(conn))
		if err != nil {
			return
		}
		reply(conn, req)
	}()

	return "tcp://" + l.Addr().String()
}

func TestSynthesizeCollectsChunks(t *testing.T) {
	t.Parallel()

	voices := make(chan string, 1)
	endpoint := fakeServer(t, func(conn net.Conn, req event) {
		voice, _ := req.Data["voice"].(map[string]any)
		name, _ := voice["name"].(string)
		voices <- name

		_ = writeEvent(conn, event{Type: "audio-start", Data: map[string]any{"rate": 16000, "width": 2, "channels": 1}}, nil)
		_ = writeEvent(conn, event{Type: "audio-chunk"}, []byte{1, 2})
		_ = writeEvent(conn, event{Type: "audio-chunk"}, []byte{3, 4})
		_ = writeEvent(conn, event{Type: "audio-stop"}, nil)
	})

	s := New(config.PiperConfig{Endpoint: endpoint}, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := s.Synthesize(ctx, "Przełączono na telewizor", tts.SynthesizeOpts{Language: "pl"})
	require.NoError(t, err)

	assert.Equal(t, "pl_PL-gosia-medium", <-voices)
	assert.Equal(t, "audio/wav", res.ContentType)
	assert.Equal(t, 16000, res.SampleRate)
	// 10ms of 16kHz mono 16-bit silence is 320 bytes, followed by the chunks.
	require.Len(t, res.Audio, 44+320+4)
	assert.Equal(t, []byte{1, 2, 3, 4}, res.Audio[len(res.Audio)-4:])
}

func TestSynthesizeReportsServerError(t *testing.T) {
	t.Parallel()

	endpoint := fakeServer(t, func(conn net.Conn, _ event) {
		_ = writeEvent(conn, event{Type: "error", Data: map[string]any{"text": "voice not found"}}, nil)
	})

	s := New(config.PiperConfig{Endpoint: endpoint, Voices: map[string]string{"pl": "custom"}}, 0)
	_, err := s.Synthesize(context.Background(), "hej", tts.SynthesizeOpts{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "voice not found")
}

func TestSynthesizeRequiresEndpoint(t *testing.T) {
	t.Parallel()

	s := New(config.PiperConfig{}, 0)
	_, err := s.Synthesize(context.Background(), "hej", tts.SynthesizeOpts{Language: "en"})
	assert.ErrorContains(t, err, "no piper endpoint")

	_, err = s.Synthesize(context.Background(), "  ", tts.SynthesizeOpts{})
	assert.ErrorContains(t, err, "empty text")
}
