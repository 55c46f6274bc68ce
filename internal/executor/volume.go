package executor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nadzzz/maestro/internal/playback"
)

// assumedVolume stands in for the current volume when no device reports one.
const assumedVolume = 50

// VolumeResult holds the device volume before and after the change.
type VolumeResult struct {
	Previous int
	Volume   int
}

// VolumeUp raises the active device volume by delta, saturating at 100.
func (e *Executor) VolumeUp(ctx context.Context, delta int) (VolumeResult, error) {
	return e.adjustVolume(ctx, func(cur int) int { return cur + delta })
}

// VolumeDown lowers the active device volume by delta, saturating at 0.
func (e *Executor) VolumeDown(ctx context.Context, delta int) (VolumeResult, error) {
	return e.adjustVolume(ctx, func(cur int) int { return cur - delta })
}

// SetVolume sets the volume to level clamped to 0-100. The current volume is
// only reported, so a missing device or unreadable state does not stop it.
func (e *Executor) SetVolume(ctx context.Context, level int) (VolumeResult, error) {
	res := VolumeResult{Previous: assumedVolume, Volume: clamp(level, 0, 100)}

	st, err := e.player.State(ctx)
	switch {
	case errors.Is(err, playback.ErrUnauthorized):
		return VolumeResult{}, err
	case err != nil:
		slog.Warn("reading current volume failed", "error", err)
	case st.Device != nil:
		res.Previous = st.Device.Volume
	}

	if err := e.player.SetVolume(ctx, res.Volume); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Executor) adjustVolume(ctx context.Context, next func(cur int) int) (VolumeResult, error) {
	st, err := e.player.State(ctx)
	if err != nil {
		return VolumeResult{}, err
	}
	if st.Device == nil {
		return VolumeResult{}, ErrNoActiveDevice
	}

	res := VolumeResult{Previous: st.Device.Volume, Volume: clamp(next(st.Device.Volume), 0, 100)}
	if err := e.player.SetVolume(ctx, res.Volume); err != nil {
		return res, err
	}
	return res, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
