// Package intent turns a free-form utterance into exactly one playback Action.
//
// The primary path asks a language model to classify the utterance into a
// JSON object; the response is decoded into a closed set of Action variants
// and validated per kind. Anything the model gets wrong falls through a
// deterministic ladder (object slicing, keyword matching, plain search) so
// Parse always yields an Action.
package intent

import "strings"

// Kind is the wire name of an Action variant.
type Kind string

const (
	KindPlaySong       Kind = "play_song"
	KindNextSong       Kind = "next_song"
	KindPausePlayback  Kind = "pause_playback"
	KindResumePlayback Kind = "resume_playback"
	KindRecommendation Kind = "recommendation"
	KindSwitchDevice   Kind = "switch_device"
	KindLike           Kind = "like"
	KindVolumeUp       Kind = "volume_up"
	KindVolumeDown     Kind = "volume_down"
	KindSetVolume      Kind = "set_volume"
)

// Default volume values used when the model omits a number.
const (
	DefaultVolumeDelta = 10
	DefaultVolumeLevel = 50
)

// Action is one structured command. The set of implementations is closed.
type Action interface {
	Kind() Kind
	isAction()
}

// DeviceType is one of the device classes a user can switch playback to.
type DeviceType string

const (
	DeviceTV         DeviceType = "TV"
	DeviceComputer   DeviceType = "Computer"
	DeviceSmartphone DeviceType = "Smartphone"
)

// ParseDeviceType matches s case-insensitively against the known device types.
func ParseDeviceType(s string) (DeviceType, bool) {
	for _, d := range []DeviceType{DeviceTV, DeviceComputer, DeviceSmartphone} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

// PlaySong searches for a track and plays it.
type PlaySong struct {
	Song   string
	Artist string
}

// NextSong skips to the next track.
type NextSong struct{}

// PausePlayback pauses the active player.
type PausePlayback struct{}

// ResumePlayback resumes the active player.
type ResumePlayback struct{}

// Recommendation plays a playlist matching the user's mood.
type Recommendation struct {
	MoodText string
}

// SwitchDevice transfers playback to a device of the given type.
type SwitchDevice struct {
	Device DeviceType
}

// Like saves the current track to the user's library.
type Like struct{}

// VolumeUp raises the volume by Delta percent points.
type VolumeUp struct {
	Delta int
}

// VolumeDown lowers the volume by Delta percent points.
type VolumeDown struct {
	Delta int
}

// SetVolume sets an absolute volume level. Out-of-range levels are clamped
// by the executor, not rejected here.
type SetVolume struct {
	Level int
}

func (PlaySong) Kind() Kind       { return KindPlaySong }
func (NextSong) Kind() Kind       { return KindNextSong }
func (PausePlayback) Kind() Kind  { return KindPausePlayback }
func (ResumePlayback) Kind() Kind { return KindResumePlayback }
func (Recommendation) Kind() Kind { return KindRecommendation }
func (SwitchDevice) Kind() Kind   { return KindSwitchDevice }
func (Like) Kind() Kind           { return KindLike }
func (VolumeUp) Kind() Kind       { return KindVolumeUp }
func (VolumeDown) Kind() Kind     { return KindVolumeDown }
func (SetVolume) Kind() Kind      { return KindSetVolume }

func (PlaySong) isAction()       {}
func (NextSong) isAction()       {}
func (PausePlayback) isAction()  {}
func (ResumePlayback) isAction() {}
func (Recommendation) isAction() {}
func (SwitchDevice) isAction()   {}
func (Like) isAction()           {}
func (VolumeUp) isAction()       {}
func (VolumeDown) isAction()     {}
func (SetVolume) isAction()      {}
