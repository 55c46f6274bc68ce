package audio

import (
	"context"
	"encoding/binary"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCMToWAVHeader(t *testing.T) {
	t.Parallel()

	pcm := []byte{1, 2, 3, 4}
	wav := PCMToWAV(pcm, 24000, 1, 2)

	require.Len(t, wav, 48)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
	assert.True(t, HasSamples(wav))
	assert.False(t, HasSamples(PCMToWAV(nil, 24000, 1, 2)))
}

func TestSilence(t *testing.T) {
	t.Parallel()

	assert.Len(t, Silence(500*time.Millisecond, 24000, 1, 2), 24000)
	assert.Nil(t, Silence(0, 24000, 1, 2))
}

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestRecorderReturnsStdout(t *testing.T) {
	t.Parallel()
	requireCommand(t, "sh")

	r := &Recorder{Command: "sh", Args: []string{"-c", "printf 'RIFF0123456789012345678901234567890123456789abcd'"}, Timeout: 5 * time.Second}
	wav, err := r.Record(context.Background())
	require.NoError(t, err)
	assert.Len(t, wav, 48)
}

func TestRecorderWithoutSamplesIsNoSpeech(t *testing.T) {
	t.Parallel()
	requireCommand(t, "sleep")

	r := &Recorder{Command: "sleep", Args: []string{"5"}, Timeout: 50 * time.Millisecond}
	_, err := r.Record(context.Background())
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestRecorderFailure(t *testing.T) {
	t.Parallel()
	requireCommand(t, "sh")

	r := &Recorder{Command: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}}
	_, err := r.Record(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "broken")
}

func TestPlayerPipesAudio(t *testing.T) {
	t.Parallel()
	requireCommand(t, "sh")

	p := &Player{Command: "sh", Args: []string{"-c", "test $(wc -c) -eq 4"}}
	require.NoError(t, p.Play(context.Background(), []byte{1, 2, 3, 4}))
}
