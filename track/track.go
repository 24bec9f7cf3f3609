// Package track holds the immutable track model and the in-memory catalog fetched from the backend.
package track

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/melody-cli/melody/util"
)

// Seconds is a duration in seconds. The backend sends it either as a number or as a numeric string.
type Seconds float64

func (s *Seconds) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*s = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
		if raw == "" {
			*s = 0
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("duration %q: %w", raw, err)
	}
	if v < 0 {
		v = 0
	}
	*s = Seconds(v)
	return nil
}

// Float returns s as float64.
func (s Seconds) Float() float64 {
	return float64(s)
}

// Track is a single playable song.
type Track struct {
	ID          string  `json:"id" jsonschema:"description=Unique track identifier"`
	Name        string  `json:"name" jsonschema:"description=Display name"`
	Description string  `json:"desc" jsonschema:"description=Short description, usually the artist or album"`
	Image       string  `json:"image" jsonschema:"description=Artwork URI"`
	Audio       string  `json:"audio" jsonschema:"description=Media URI"`
	Duration    Seconds `json:"duration" jsonschema:"description=Length in seconds, 0 when unknown"`
}

func (t Track) String() string {
	if t.Duration > 0 {
		return fmt.Sprintf("%s (%s)", t.Name, util.FormatClock(t.Duration.Float()))
	}
	return t.Name
}
