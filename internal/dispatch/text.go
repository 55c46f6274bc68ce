package dispatch

import (
	"errors"
	"fmt"

	"github.com/nadzzz/maestro/internal/executor"
	"github.com/nadzzz/maestro/internal/intent"
	"github.com/nadzzz/maestro/internal/playback"
)

var errNoToken = errors.New("no spotify access token")

// announce is spoken before an action runs.
func announce(action intent.Action) string {
	switch a := action.(type) {
	case intent.PlaySong:
		if a.Artist != "" {
			return fmt.Sprintf("Looking for %s by %s.", a.Song, a.Artist)
		}
		return fmt.Sprintf("Looking for %s.", a.Song)
	case intent.NextSong:
		return "Skipping to the next track."
	case intent.PausePlayback:
		return "Pausing."
	case intent.ResumePlayback:
		return "Resuming playback."
	case intent.Recommendation:
		return "Let me find something for your mood."
	case intent.SwitchDevice:
		return fmt.Sprintf("Switching to your %s.", a.Device)
	case intent.Like:
		return "Saving this track."
	case intent.VolumeUp:
		return "Turning it up."
	case intent.VolumeDown:
		return "Turning it down."
	case intent.SetVolume:
		return fmt.Sprintf("Setting the volume to %d.", a.Level)
	default:
		return "Working on it."
	}
}

func playText(res executor.PlayResult) string {
	if res.NowPlaying != nil {
		return "Now playing: " + res.NowPlaying.String() + "."
	}
	return "Now playing: " + res.Track.String() + "."
}

func nextText(res executor.NextResult) string {
	switch {
	case res.Previous != nil && res.Current != nil:
		return fmt.Sprintf("Skipped %s. Now playing %s.", res.Previous.String(), res.Current.String())
	case res.Current != nil:
		return "Now playing " + res.Current.String() + "."
	case res.Previous != nil:
		return "Skipped " + res.Previous.String() + "."
	default:
		return "Skipped to the next track."
	}
}

// failureText is the apology announced when action fails with err.
func failureText(action intent.Action, err error) string {
	var (
		notFound  *executor.NotFoundError
		typeErr   *executor.DeviceTypeError
		statusErr *playback.StatusError
	)
	switch {
	case errors.Is(err, errNoToken):
		return "Sorry, I couldn't sign in to Spotify."
	case errors.Is(err, playback.ErrUnauthorized):
		return "Sorry, the Spotify session expired. Try again."
	case errors.Is(err, executor.ErrNothingPlaying):
		return "Nothing is playing right now."
	case errors.Is(err, executor.ErrNoDevices):
		return "No Spotify devices found. Please open the Spotify app."
	case errors.Is(err, executor.ErrNoActiveDevice):
		return "There is no active Spotify device."
	case errors.As(err, &typeErr):
		return fmt.Sprintf("I couldn't find a device of type %s.", typeErr.Type)
	case errors.As(err, &notFound) && notFound.What == "playlist":
		return "I couldn't find a playlist matching your mood."
	case errors.As(err, &notFound):
		return fmt.Sprintf("I couldn't find %s.", notFound.Query)
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Sorry, Spotify refused to %s.", verb(action))
	default:
		return fmt.Sprintf("Sorry, something went wrong while trying to %s.", verb(action))
	}
}

func verb(action intent.Action) string {
	switch action.Kind() {
	case intent.KindPlaySong:
		return "play that"
	case intent.KindNextSong:
		return "skip the track"
	case intent.KindPausePlayback:
		return "pause"
	case intent.KindResumePlayback:
		return "resume"
	case intent.KindRecommendation:
		return "play the playlist"
	case intent.KindSwitchDevice:
		return "switch devices"
	case intent.KindLike:
		return "like the track"
	default:
		return "change the volume"
	}
}
