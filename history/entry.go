package history

import (
	"fmt"
	"time"

	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
)

// Entry is one track in the local play history.
type Entry struct {
	TrackID     string    `json:"track_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Plays       int       `json:"plays"`
	LastPlayed  time.Time `json:"last_played"`
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s - %s (%s)", e.Name, e.Description, util.Quantify(e.Plays, "play", "plays"))
}

func newEntry(t track.Track) *Entry {
	return &Entry{
		TrackID:     t.ID,
		Name:        t.Name,
		Description: t.Description,
		Duration:    t.Duration.Float(),
	}
}
