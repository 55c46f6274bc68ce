// Package spotify implements playback.Player on top of the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/nadzzz/maestro/internal/playback"
)

// Client adapts a zmb3 Spotify client to the playback.Player port.
type Client struct {
	api *spotify.Client
}

var _ playback.Player = (*Client)(nil)

// New returns a Client that authenticates every request with httpClient.
// An empty baseURL targets the public Web API.
func New(httpClient *http.Client, baseURL string) *Client {
	var opts []spotify.ClientOption
	if baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &Client{api: spotify.New(httpClient, opts...)}
}

// NewFactory returns a playback.Factory that builds a bearer-authenticated
// Client for each access token.
func NewFactory(baseURL string) playback.Factory {
	return func(accessToken string) playback.Player {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
		return New(oauth2.NewClient(context.Background(), src), baseURL)
	}
}

// CurrentlyPlaying returns the current item; an empty player yields a
// Snapshot without a track.
func (c *Client) CurrentlyPlaying(ctx context.Context) (playback.Snapshot, error) {
	cp, err := c.api.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return playback.Snapshot{}, translate("currently playing", err)
	}
	if cp == nil || cp.Item == nil {
		return playback.Snapshot{}, nil
	}
	track := fromFullTrack(cp.Item)
	return playback.Snapshot{Track: &track, IsPlaying: cp.Playing}, nil
}

// State returns the active device, if any.
func (c *Client) State(ctx context.Context) (playback.PlayerState, error) {
	st, err := c.api.PlayerState(ctx)
	if err != nil {
		return playback.PlayerState{}, translate("player state", err)
	}
	if st == nil || st.Device.ID == "" {
		return playback.PlayerState{}, nil
	}
	dev := fromDevice(st.Device)
	return playback.PlayerState{Device: &dev, IsPlaying: st.Playing}, nil
}

// Devices lists the user's available devices.
func (c *Client) Devices(ctx context.Context) ([]playback.Device, error) {
	devices, err := c.api.PlayerDevices(ctx)
	if err != nil {
		return nil, translate("list devices", err)
	}
	out := make([]playback.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, fromDevice(d))
	}
	return out, nil
}

// Transfer moves playback to deviceID.
func (c *Client) Transfer(ctx context.Context, deviceID string, play bool) error {
	return translate("transfer playback", c.api.TransferPlayback(ctx, spotify.ID(deviceID), play))
}

func (c *Client) Next(ctx context.Context) error {
	return translate("next", c.api.Next(ctx))
}

func (c *Client) Pause(ctx context.Context) error {
	return translate("pause", c.api.Pause(ctx))
}

func (c *Client) Resume(ctx context.Context) error {
	return translate("resume", c.api.Play(ctx))
}

// SearchTracks returns up to limit tracks matching query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]playback.Track, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, translate("search tracks", err)
	}
	if res.Tracks == nil {
		return nil, nil
	}
	out := make([]playback.Track, 0, len(res.Tracks.Tracks))
	for i := range res.Tracks.Tracks {
		out = append(out, fromFullTrack(&res.Tracks.Tracks[i]))
	}
	return out, nil
}

// SearchPlaylists returns up to limit playlists matching query. The API may
// return null entries; those are dropped.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]playback.Playlist, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypePlaylist, spotify.Limit(limit))
	if err != nil {
		return nil, translate("search playlists", err)
	}
	if res.Playlists == nil {
		return nil, nil
	}
	out := make([]playback.Playlist, 0, len(res.Playlists.Playlists))
	for _, p := range res.Playlists.Playlists {
		if p.ID == "" || p.URI == "" {
			continue
		}
		out = append(out, playback.Playlist{
			ID:    p.ID.String(),
			Name:  p.Name,
			URI:   string(p.URI),
			Owner: p.Owner.DisplayName,
		})
	}
	return out, nil
}

// ArtistTopTracks returns the artist's most popular tracks in market.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID, market string) ([]playback.Track, error) {
	tracks, err := c.api.GetArtistsTopTracks(ctx, spotify.ID(artistID), market)
	if err != nil {
		return nil, translate("artist top tracks", err)
	}
	out := make([]playback.Track, 0, len(tracks))
	for i := range tracks {
		out = append(out, fromFullTrack(&tracks[i]))
	}
	return out, nil
}

// PlayTracks starts playing uris on deviceID.
func (c *Client) PlayTracks(ctx context.Context, deviceID string, uris ...string) error {
	opts := &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}
	for _, u := range uris {
		opts.URIs = append(opts.URIs, spotify.URI(u))
	}
	return translate("play tracks", c.api.PlayOpt(ctx, opts))
}

// PlayContext starts playing an album or playlist on deviceID.
func (c *Client) PlayContext(ctx context.Context, deviceID, contextURI string) error {
	uri := spotify.URI(contextURI)
	return translate("play context", c.api.PlayOpt(ctx, &spotify.PlayOptions{
		DeviceID:        deviceRef(deviceID),
		PlaybackContext: &uri,
	}))
}

// Queue appends a track to the play queue of deviceID.
func (c *Client) Queue(ctx context.Context, deviceID, trackID string) error {
	return translate("queue", c.api.QueueSongOpt(ctx, spotify.ID(trackID), &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}))
}

// Shuffle toggles shuffle on deviceID.
func (c *Client) Shuffle(ctx context.Context, deviceID string, on bool) error {
	return translate("shuffle", c.api.ShuffleOpt(ctx, on, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}))
}

// IsSaved reports whether trackID is in the user's library.
func (c *Client) IsSaved(ctx context.Context, trackID string) (bool, error) {
	saved, err := c.api.UserHasTracks(ctx, spotify.ID(trackID))
	if err != nil {
		return false, translate("check library", err)
	}
	return len(saved) > 0 && saved[0], nil
}

// Save adds trackID to the user's library.
func (c *Client) Save(ctx context.Context, trackID string) error {
	return translate("save track", c.api.AddTracksToLibrary(ctx, spotify.ID(trackID)))
}

// SetVolume sets the active device volume in percent.
func (c *Client) SetVolume(ctx context.Context, percent int) error {
	return translate("set volume", c.api.Volume(ctx, percent))
}

func deviceRef(deviceID string) *spotify.ID {
	if deviceID == "" {
		return nil
	}
	id := spotify.ID(deviceID)
	return &id
}

func fromFullTrack(t *spotify.FullTrack) playback.Track {
	track := playback.Track{
		ID:   t.ID.String(),
		URI:  string(t.URI),
		Name: t.Name,
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, playback.Artist{ID: a.ID.String(), Name: a.Name})
	}
	return track
}

func fromDevice(d spotify.PlayerDevice) playback.Device {
	return playback.Device{
		ID:     d.ID.String(),
		Name:   d.Name,
		Type:   d.Type,
		Active: d.Active,
		Volume: int(d.Volume),
	}
}

// translate maps API errors to *playback.StatusError so callers can detect
// expired tokens without depending on this package.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return &playback.StatusError{Op: op, Status: apiErr.Status, Message: apiErr.Message}
	}
	// Error responses without a JSON body only carry the status in the text.
	if strings.Contains(err.Error(), "HTTP 401") {
		return &playback.StatusError{Op: op, Status: http.StatusUnauthorized, Message: err.Error()}
	}
	return fmt.Errorf("%s: %w", op, err)
}
