package playback

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusErrorUnwrapsUnauthorized(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("next: %w", &StatusError{Op: "next", Status: http.StatusUnauthorized, Message: "The access token expired"})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Contains(t, err.Error(), "status 401")

	other := &StatusError{Op: "pause", Status: http.StatusForbidden}
	assert.False(t, errors.Is(other, ErrUnauthorized))
	assert.Equal(t, "pause: spotify returned status 403", other.Error())
}

func TestTrackString(t *testing.T) {
	t.Parallel()

	track := Track{Name: "Under Pressure", Artists: []Artist{{Name: "Queen"}, {Name: "David Bowie"}}}
	assert.Equal(t, "Queen, David Bowie", track.ArtistNames())
	assert.Equal(t, "Under Pressure by Queen, David Bowie", track.String())
	assert.Equal(t, "Intro", Track{Name: "Intro"}.String())
}
