// Package playbacktest provides an in-memory playback.Player for tests.
package playbacktest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nadzzz/maestro/internal/playback"
)

// Call records one Player method invocation.
type Call struct {
	Method string
	Args   []string
}

func (c Call) String() string {
	return c.Method + "(" + strings.Join(c.Args, ", ") + ")"
}

// Player is a scripted playback.Player. Snapshots are returned in order; the
// last one repeats. Errs fails a method by name.
type Player struct {
	mu sync.Mutex

	Snapshots   []playback.Snapshot
	PlayerState playback.PlayerState
	DeviceList  []playback.Device
	Tracks      []playback.Track
	Playlists   []playback.Playlist
	TopTracks   []playback.Track
	Saved       map[string]bool
	Errs        map[string]error

	calls []Call
}

var _ playback.Player = (*Player)(nil)

// Calls returns a copy of the recorded calls.
func (p *Player) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallsTo returns the recorded calls to method.
func (p *Player) CallsTo(method string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (p *Player) record(method string, args ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Method: method, Args: args})
	return p.Errs[method]
}

func (p *Player) CurrentlyPlaying(context.Context) (playback.Snapshot, error) {
	if err := p.record("CurrentlyPlaying"); err != nil {
		return playback.Snapshot{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Snapshots) == 0 {
		return playback.Snapshot{}, nil
	}
	snap := p.Snapshots[0]
	if len(p.Snapshots) > 1 {
		p.Snapshots = p.Snapshots[1:]
	}
	return snap, nil
}

func (p *Player) State(context.Context) (playback.PlayerState, error) {
	if err := p.record("State"); err != nil {
		return playback.PlayerState{}, err
	}
	return p.PlayerState, nil
}

func (p *Player) Devices(context.Context) ([]playback.Device, error) {
	if err := p.record("Devices"); err != nil {
		return nil, err
	}
	return p.DeviceList, nil
}

func (p *Player) Transfer(_ context.Context, deviceID string, play bool) error {
	return p.record("Transfer", deviceID, fmt.Sprint(play))
}

func (p *Player) Next(context.Context) error   { return p.record("Next") }
func (p *Player) Pause(context.Context) error  { return p.record("Pause") }
func (p *Player) Resume(context.Context) error { return p.record("Resume") }

func (p *Player) SearchTracks(_ context.Context, query string, limit int) ([]playback.Track, error) {
	if err := p.record("SearchTracks", query, fmt.Sprint(limit)); err != nil {
		return nil, err
	}
	if len(p.Tracks) > limit {
		return p.Tracks[:limit], nil
	}
	return p.Tracks, nil
}

func (p *Player) SearchPlaylists(_ context.Context, query string, limit int) ([]playback.Playlist, error) {
	if err := p.record("SearchPlaylists", query, fmt.Sprint(limit)); err != nil {
		return nil, err
	}
	return p.Playlists, nil
}

func (p *Player) ArtistTopTracks(_ context.Context, artistID, market string) ([]playback.Track, error) {
	if err := p.record("ArtistTopTracks", artistID, market); err != nil {
		return nil, err
	}
	return p.TopTracks, nil
}

func (p *Player) PlayTracks(_ context.Context, deviceID string, uris ...string) error {
	return p.record("PlayTracks", append([]string{deviceID}, uris...)...)
}

func (p *Player) PlayContext(_ context.Context, deviceID, contextURI string) error {
	return p.record("PlayContext", deviceID, contextURI)
}

func (p *Player) Queue(_ context.Context, deviceID, trackID string) error {
	return p.record("Queue", deviceID, trackID)
}

func (p *Player) Shuffle(_ context.Context, deviceID string, on bool) error {
	return p.record("Shuffle", deviceID, fmt.Sprint(on))
}

func (p *Player) IsSaved(_ context.Context, trackID string) (bool, error) {
	if err := p.record("IsSaved", trackID); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Saved[trackID], nil
}

func (p *Player) Save(_ context.Context, trackID string) error {
	if err := p.record("Save", trackID); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Saved == nil {
		p.Saved = make(map[string]bool)
	}
	p.Saved[trackID] = true
	return nil
}

func (p *Player) SetVolume(_ context.Context, percent int) error {
	return p.record("SetVolume", fmt.Sprint(percent))
}

// Playing returns a snapshot with track as the current item.
func Playing(track playback.Track) playback.Snapshot {
	return playback.Snapshot{Track: &track, IsPlaying: true}
}

// Track builds a track with one artist.
func Track(id, name, artistID, artist string) playback.Track {
	return playback.Track{
		ID:      id,
		URI:     "spotify:track:" + id,
		Name:    name,
		Artists: []playback.Artist{{ID: artistID, Name: artist}},
	}
}
