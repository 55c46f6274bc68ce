package executor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nadzzz/maestro/internal/playback"
)

// PlayResult describes a successful PlaySong.
type PlayResult struct {
	Track       playback.Track
	Device      playback.Device
	Transferred bool
	Queued      int

	// NowPlaying is re-read after the transition settle delay; nil if unknown.
	NowPlaying *playback.Track
}

// PlaySong searches for song+artist, plays the first hit on the active device
// (or the first listed device after a transfer), queues the artist's top
// tracks and enables shuffle. Only the play call decides success.
func (e *Executor) PlaySong(ctx context.Context, song, artist string) (PlayResult, error) {
	query := strings.TrimSpace(strings.TrimSpace(song) + " " + strings.TrimSpace(artist))

	tracks, err := e.player.SearchTracks(ctx, query, 1)
	if err != nil {
		return PlayResult{}, err
	}
	if len(tracks) == 0 {
		return PlayResult{}, &NotFoundError{What: "track", Query: query}
	}
	res := PlayResult{Track: tracks[0]}

	device, transferred, err := e.chooseDevice(ctx)
	if err != nil {
		return res, err
	}
	res.Device, res.Transferred = device, transferred

	if err := e.player.PlayTracks(ctx, device.ID, res.Track.URI); err != nil {
		return res, err
	}
	slog.Info("playing track", "track", res.Track.String(), "device", device.Name)

	res.Queued = e.queueTopTracks(ctx, device.ID, res.Track)

	if err := e.player.Shuffle(ctx, device.ID, true); err != nil {
		slog.Warn("enabling shuffle failed", "error", err)
	}

	if err := e.cfg.Sleep(ctx, e.cfg.TransitionSettle); err != nil {
		return res, nil
	}
	if now, err := e.snapshot(ctx); err == nil {
		res.NowPlaying = now
	}
	return res, nil
}

// chooseDevice prefers an already active device. Otherwise playback is moved
// to the first listed device and the transfer settle delay is awaited.
func (e *Executor) chooseDevice(ctx context.Context) (playback.Device, bool, error) {
	devices, err := e.player.Devices(ctx)
	if err != nil {
		return playback.Device{}, false, err
	}
	if len(devices) == 0 {
		return playback.Device{}, false, ErrNoDevices
	}

	for _, d := range devices {
		if d.Active {
			return d, false, nil
		}
	}

	target := devices[0]
	slog.Info("no active device, transferring playback", "device", target.Name, "type", target.Type)
	if err := e.player.Transfer(ctx, target.ID, true); err != nil {
		return target, false, err
	}
	if err := e.cfg.Sleep(ctx, e.cfg.TransferSettle); err != nil {
		return target, true, err
	}
	return target, true, nil
}

// queueTopTracks enqueues up to QueueLimit of the primary artist's top
// tracks, skipping the one already playing. Failures are logged only.
func (e *Executor) queueTopTracks(ctx context.Context, deviceID string, playing playback.Track) int {
	if len(playing.Artists) == 0 || playing.Artists[0].ID == "" {
		return 0
	}

	top, err := e.player.ArtistTopTracks(ctx, playing.Artists[0].ID, e.cfg.Market)
	if err != nil {
		slog.Warn("fetching artist top tracks failed", "artist", playing.Artists[0].Name, "error", err)
		return 0
	}

	queued := 0
	for _, t := range top {
		if queued >= e.cfg.QueueLimit {
			break
		}
		if t.ID == playing.ID {
			continue
		}
		if err := e.player.Queue(ctx, deviceID, t.ID); err != nil {
			slog.Warn("queueing track failed", "track", t.Name, "error", err)
			continue
		}
		queued++
	}
	slog.Debug("queued artist top tracks", "count", queued)
	return queued
}

// RecommendResult names the playlist that was started.
type RecommendResult struct {
	Playlist playback.Playlist
}

// Recommend plays the first playlist matching the mood text.
func (e *Executor) Recommend(ctx context.Context, moodText string) (RecommendResult, error) {
	query := strings.TrimSpace(moodText)

	playlists, err := e.player.SearchPlaylists(ctx, query, 5)
	if err != nil {
		return RecommendResult{}, err
	}
	if len(playlists) == 0 {
		return RecommendResult{}, &NotFoundError{What: "playlist", Query: query}
	}

	first := playlists[0]
	if err := e.player.PlayContext(ctx, "", first.URI); err != nil {
		return RecommendResult{Playlist: first}, err
	}
	slog.Info("playing playlist", "playlist", first.Name, "owner", first.Owner)
	return RecommendResult{Playlist: first}, nil
}
