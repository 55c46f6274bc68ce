package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeginListeningAllowsOneCycle(t *testing.T) {
	t.Parallel()

	var s Session
	assert.True(t, s.BeginListening())
	assert.False(t, s.BeginListening(), "a second cycle must not start while one is active")
	assert.True(t, s.Listening())

	s.EndListening()
	assert.False(t, s.Listening())
	assert.True(t, s.BeginListening())
}

func TestBeginListeningRacesToSingleWinner(t *testing.T) {
	t.Parallel()

	var (
		s    Session
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.BeginListening() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMute(t *testing.T) {
	t.Parallel()

	var s Session
	assert.False(t, s.Muted())
	s.SetMuted(true)
	assert.True(t, s.Muted())
	s.SetMuted(false)
	assert.False(t, s.Muted())
}
