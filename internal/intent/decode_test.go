package intent

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidActions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		body      string
		utterance string
		want      Action
	}{
		{name: "play song", body: `{"action":"play_song","song":"Bohemian Rhapsody","artist":"Queen"}`, want: PlaySong{Song: "Bohemian Rhapsody", Artist: "Queen"}},
		{name: "play artist only", body: `{"action":"play_song","song":"","artist":"Queen"}`, want: PlaySong{Artist: "Queen"}},
		{name: "next", body: `{"action":"next_song"}`, want: NextSong{}},
		{name: "uppercase kind", body: `{"action":"NEXT_SONG"}`, want: NextSong{}},
		{name: "pause", body: `{"action":"pause_playback"}`, want: PausePlayback{}},
		{name: "resume", body: `{"action":"resume_playback"}`, want: ResumePlayback{}},
		{name: "recommendation keeps utterance", body: `{"action":"recommendation"}`, utterance: " mam dziś doła ", want: Recommendation{MoodText: "mam dziś doła"}},
		{name: "switch device lower case", body: `{"action":"switch_device","device":"tv"}`, want: SwitchDevice{Device: DeviceTV}},
		{name: "switch device smartphone", body: `{"action":"switch_device","device":"Smartphone"}`, want: SwitchDevice{Device: DeviceSmartphone}},
		{name: "like", body: `{"action":"like"}`, want: Like{}},
		{name: "volume up string", body: `{"action":"volume_up","volume":"20"}`, want: VolumeUp{Delta: 20}},
		{name: "volume up default", body: `{"action":"volume_up"}`, want: VolumeUp{Delta: DefaultVolumeDelta}},
		{name: "volume down negative", body: `{"action":"volume_down","volume":-15}`, want: VolumeDown{Delta: 15}},
		{name: "volume down empty string", body: `{"action":"volume_down","volume":""}`, want: VolumeDown{Delta: DefaultVolumeDelta}},
		{name: "set volume number", body: `{"action":"set_volume","volume":30}`, want: SetVolume{Level: 30}},
		{name: "set volume percent", body: `{"action":"set_volume","volume":"30%"}`, want: SetVolume{Level: 30}},
		{name: "set volume null", body: `{"action":"set_volume","volume":null}`, want: SetVolume{Level: DefaultVolumeLevel}},
		{name: "set volume above range", body: `{"action":"set_volume","volume":"150"}`, want: SetVolume{Level: 150}},
		{name: "set volume below range", body: `{"action":"set_volume","volume":-5}`, want: SetVolume{Level: -5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode([]byte(tc.body), tc.utterance)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsInvalidActions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
	}{
		{name: "not json", body: `next_song`},
		{name: "unknown action", body: `{"action":"dance"}`},
		{name: "missing action", body: `{"song":"x"}`},
		{name: "play without target", body: `{"action":"play_song","song":"","artist":""}`},
		{name: "unknown device", body: `{"action":"switch_device","device":"Toaster"}`},
		{name: "missing device", body: `{"action":"switch_device"}`},
		{name: "non numeric volume", body: `{"action":"set_volume","volume":"loud"}`},
		{name: "volume object", body: `{"action":"volume_up","volume":{"by":3}}`},
		{name: "song wrong type", body: `{"action":"play_song","song":42}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(tc.body), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAction))
		})
	}
}

func TestParseDeviceType(t *testing.T) {
	t.Parallel()

	d, ok := ParseDeviceType(" computer ")
	assert.True(t, ok)
	assert.Equal(t, DeviceComputer, d)

	_, ok = ParseDeviceType("speaker")
	assert.False(t, ok)
}
