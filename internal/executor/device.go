package executor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nadzzz/maestro/internal/playback"
)

// SwitchResult names the device playback moved to.
type SwitchResult struct {
	Device playback.Device
}

// SwitchDevice transfers playback to the first device whose type matches
// deviceType case-insensitively.
func (e *Executor) SwitchDevice(ctx context.Context, deviceType string) (SwitchResult, error) {
	devices, err := e.player.Devices(ctx)
	if err != nil {
		return SwitchResult{}, err
	}
	if len(devices) == 0 {
		return SwitchResult{}, ErrNoDevices
	}

	for _, d := range devices {
		if !strings.EqualFold(d.Type, deviceType) {
			continue
		}
		if err := e.player.Transfer(ctx, d.ID, true); err != nil {
			return SwitchResult{Device: d}, err
		}
		slog.Info("playback transferred", "device", d.Name, "type", d.Type)
		return SwitchResult{Device: d}, nil
	}
	return SwitchResult{}, &DeviceTypeError{Type: deviceType}
}
