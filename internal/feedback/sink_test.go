package feedback

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/maestro/internal/state"
	"github.com/nadzzz/maestro/internal/tts"
)

type fakeSynth struct {
	texts []string
	err   error
}

func (f *fakeSynth) Name() string { return "fake" }
func (f *fakeSynth) Close() error { return nil }

func (f *fakeSynth) Synthesize(_ context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	f.texts = append(f.texts, opts.Language+":"+text)
	if f.err != nil {
		return nil, f.err
	}
	return &tts.SynthesizeResult{Audio: []byte(text)}, nil
}

type fakePlayer struct {
	played [][]byte
}

func (f *fakePlayer) Play(_ context.Context, wav []byte) error {
	f.played = append(f.played, wav)
	return nil
}

func TestSaySpeaksUnlessMuted(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	session := &state.Session{}
	synth, player := &fakeSynth{}, &fakePlayer{}
	sink := New(&out, session, WithSpeech(synth, player, "pl"))

	sink.Say(context.Background(), "Pausing.")
	session.SetMuted(true)
	sink.Say(context.Background(), "Resuming playback.")

	assert.Contains(t, out.String(), "Pausing.")
	assert.Contains(t, out.String(), "Resuming playback.")
	assert.Equal(t, []string{"pl:Pausing."}, synth.texts)
	require.Len(t, player.played, 1)
	assert.Equal(t, []byte("Pausing."), player.played[0])
}

func TestSayPrintsWhenSynthesisFails(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	player := &fakePlayer{}
	sink := New(&out, &state.Session{}, WithSpeech(&fakeSynth{err: errors.New("offline")}, player, "pl"))

	sink.Say(context.Background(), "Skipping to the next track.")
	assert.Contains(t, out.String(), "Skipping to the next track.")
	assert.Empty(t, player.played)
}

func TestSayWithoutSpeech(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := New(&out, &state.Session{})
	sink.Say(context.Background(), "Volume set to 30%.")
	sink.Say(context.Background(), "")
	sink.Notice("Listening...")

	assert.Contains(t, out.String(), "Volume set to 30%.")
	assert.Contains(t, out.String(), "Listening...")
}

func TestSpinReturnsWaitError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	want := errors.New("no speech")
	err := Spin(context.Background(), &out, "Listening...", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}
