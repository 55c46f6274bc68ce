package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAction means a model response could not be turned into an Action.
var ErrInvalidAction = errors.New("invalid action")

type rawAction struct {
	Action string          `json:"action"`
	Song   string          `json:"song"`
	Artist string          `json:"artist"`
	Device string          `json:"device"`
	Volume json.RawMessage `json:"volume"`
}

// Decode parses a model response into an Action, validating the fields each
// kind needs. utterance becomes the mood text of a Recommendation.
func Decode(data []byte, utterance string) (Action, error) {
	var raw rawAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	switch Kind(strings.ToLower(strings.TrimSpace(raw.Action))) {
	case KindPlaySong:
		song, artist := strings.TrimSpace(raw.Song), strings.TrimSpace(raw.Artist)
		if song == "" && artist == "" {
			return nil, fmt.Errorf("%w: play_song without song or artist", ErrInvalidAction)
		}
		return PlaySong{Song: song, Artist: artist}, nil
	case KindNextSong:
		return NextSong{}, nil
	case KindPausePlayback:
		return PausePlayback{}, nil
	case KindResumePlayback:
		return ResumePlayback{}, nil
	case KindRecommendation:
		return Recommendation{MoodText: strings.TrimSpace(utterance)}, nil
	case KindSwitchDevice:
		device, ok := ParseDeviceType(raw.Device)
		if !ok {
			return nil, fmt.Errorf("%w: unknown device type %q", ErrInvalidAction, raw.Device)
		}
		return SwitchDevice{Device: device}, nil
	case KindLike:
		return Like{}, nil
	case KindVolumeUp:
		delta, err := volumeValue(raw.Volume, DefaultVolumeDelta)
		if err != nil {
			return nil, err
		}
		return VolumeUp{Delta: abs(delta)}, nil
	case KindVolumeDown:
		delta, err := volumeValue(raw.Volume, DefaultVolumeDelta)
		if err != nil {
			return nil, err
		}
		return VolumeDown{Delta: abs(delta)}, nil
	case KindSetVolume:
		level, err := volumeValue(raw.Volume, DefaultVolumeLevel)
		if err != nil {
			return nil, err
		}
		return SetVolume{Level: level}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, raw.Action)
	}
}

// volumeValue accepts a JSON number or a numeric string such as "30" or
// "30%". Missing, null and empty values yield def.
func volumeValue(raw json.RawMessage, def int) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: volume: %v", ErrInvalidAction, err)
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "%")
		if text == "" {
			return def, nil
		}
	} else {
		text = string(raw)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: volume %s is not a number", ErrInvalidAction, raw)
	}
	// Far outside 0-100 either way; saturate before converting.
	f = math.Max(-1000, math.Min(1000, f))
	return int(math.Round(f)), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// sliceObject returns the text between the first '{' and the last '}'.
func sliceObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}
