package executor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nadzzz/maestro/internal/playback"
)

// LikeResult reports whether the track was saved now or already liked.
type LikeResult struct {
	Track        playback.Track
	AlreadyLiked bool
}

// Like saves the current track unless it is already in the library. A failed
// library check other than an expired token counts as not saved.
func (e *Executor) Like(ctx context.Context) (LikeResult, error) {
	snap, err := e.player.CurrentlyPlaying(ctx)
	if err != nil {
		return LikeResult{}, err
	}
	if snap.Track == nil {
		return LikeResult{}, ErrNothingPlaying
	}
	res := LikeResult{Track: *snap.Track}

	saved, err := e.player.IsSaved(ctx, snap.Track.ID)
	if errors.Is(err, playback.ErrUnauthorized) {
		return res, err
	}
	if err != nil {
		slog.Warn("library check failed, saving anyway", "track", snap.Track.ID, "error", err)
		saved = false
	}
	if saved {
		res.AlreadyLiked = true
		return res, nil
	}

	if err := e.player.Save(ctx, snap.Track.ID); err != nil {
		return res, err
	}
	return res, nil
}
