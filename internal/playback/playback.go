// Package playback defines the playback-control port the executors drive and
// the domain types it exchanges. Values are fetched fresh for every command
// and never cached.
package playback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized means the access token was rejected; the caller should
// obtain a new one before the next command.
var ErrUnauthorized = errors.New("spotify access token rejected")

// StatusError is a non-success response from the playback API.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: spotify returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: spotify returned status %d: %s", e.Op, e.Status, e.Message)
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Artist is a track's performer.
type Artist struct {
	ID   string
	Name string
}

// Track is a playable item.
type Track struct {
	ID      string
	URI     string
	Name    string
	Artists []Artist
}

// ArtistNames joins the artist names with commas.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// String renders "Name by Artists".
func (t Track) String() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return t.Name + " by " + t.ArtistNames()
}

// Snapshot is a fresh read of the current playback. Track is nil when
// nothing is playing.
type Snapshot struct {
	Track     *Track
	IsPlaying bool
}

// Device is one Spotify Connect target.
type Device struct {
	ID     string
	Name   string
	Type   string
	Active bool
	Volume int
}

// PlayerState describes the active device. Device is nil when no device is active.
type PlayerState struct {
	Device    *Device
	IsPlaying bool
}

// Playlist is a search hit for a playlist.
type Playlist struct {
	ID    string
	Name  string
	URI   string
	Owner string
}

// Player is the playback-control API. Every method is a single remote call.
type Player interface {
	CurrentlyPlaying(ctx context.Context) (Snapshot, error)
	State(ctx context.Context) (PlayerState, error)
	Devices(ctx context.Context) ([]Device, error)
	Transfer(ctx context.Context, deviceID string, play bool) error

	Next(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error

	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]Playlist, error)
	ArtistTopTracks(ctx context.Context, artistID, market string) ([]Track, error)

	PlayTracks(ctx context.Context, deviceID string, uris ...string) error
	PlayContext(ctx context.Context, deviceID, contextURI string) error
	Queue(ctx context.Context, deviceID, trackID string) error
	Shuffle(ctx context.Context, deviceID string, on bool) error

	IsSaved(ctx context.Context, trackID string) (bool, error)
	Save(ctx context.Context, trackID string) error

	SetVolume(ctx context.Context, percent int) error
}

// Factory builds a Player authorized with an access token.
type Factory func(accessToken string) Player
