package executor

import (
	"context"
	"log/slog"

	"github.com/nadzzz/maestro/internal/playback"
)

// NextResult names the tracks before and after the skip.
type NextResult struct {
	Previous *playback.Track
	Current  *playback.Track
}

// Next skips to the next track and re-reads the current one after the
// transition settle delay.
func (e *Executor) Next(ctx context.Context) (NextResult, error) {
	before, err := e.snapshot(ctx)
	if err != nil {
		return NextResult{}, err
	}

	if err := e.player.Next(ctx); err != nil {
		return NextResult{Previous: before}, err
	}

	if err := e.cfg.Sleep(ctx, e.cfg.TransitionSettle); err != nil {
		return NextResult{Previous: before}, err
	}

	after, err := e.snapshot(ctx)
	if err != nil {
		// The skip itself succeeded; only the readback is missing.
		slog.Warn("reading track after skip failed", "error", err)
	}
	return NextResult{Previous: before, Current: after}, nil
}

// PauseResult names the paused track.
type PauseResult struct {
	Track playback.Track
}

// Pause pauses playback. It fails with ErrNothingPlaying when there is no
// current item.
func (e *Executor) Pause(ctx context.Context) (PauseResult, error) {
	snap, err := e.player.CurrentlyPlaying(ctx)
	if err != nil {
		return PauseResult{}, err
	}
	if snap.Track == nil {
		return PauseResult{}, ErrNothingPlaying
	}
	if err := e.player.Pause(ctx); err != nil {
		return PauseResult{Track: *snap.Track}, err
	}
	return PauseResult{Track: *snap.Track}, nil
}

// ResumeResult names the resumed track, if known.
type ResumeResult struct {
	Track *playback.Track
}

// Resume resumes playback. The snapshot is used only for feedback.
func (e *Executor) Resume(ctx context.Context) (ResumeResult, error) {
	track, err := e.snapshot(ctx)
	if err != nil {
		return ResumeResult{}, err
	}
	if err := e.player.Resume(ctx); err != nil {
		return ResumeResult{Track: track}, err
	}
	return ResumeResult{Track: track}, nil
}
