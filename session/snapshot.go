package session

import (
	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
	"github.com/samber/mo"
)

// Snapshot is a point-in-time copy of State handed to the UI.
type Snapshot struct {
	Current  mo.Option[track.Track]
	Playing  bool
	Position float64
	Duration float64
	Volume   float64
	Muted    bool
	Mode     Mode
	Queue    queue.Queue
}

// Percent is the seek bar fill, 0 while the duration is unknown.
func (s Snapshot) Percent() int {
	return util.Percent(s.Position, s.Duration)
}

// Ratio is the seek bar fill in [0, 1].
func (s Snapshot) Ratio() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return util.Clamp(s.Position/s.Duration, 0, 1)
}

func (s Snapshot) Elapsed() util.Clock {
	return util.ClockOf(s.Position)
}

func (s Snapshot) Total() util.Clock {
	return util.ClockOf(s.Duration)
}

func (s Snapshot) EffectiveVolume() float64 {
	if s.Muted {
		return 0
	}
	return s.Volume
}

func (s Snapshot) Looping() bool {
	return s.Mode.Looping()
}

func (s Snapshot) Shuffling() bool {
	return s.Mode.Shuffling()
}

// QueueIndex returns the position of the current track in the queue, or -1.
func (s Snapshot) QueueIndex() int {
	t, ok := s.Current.Get()
	if !ok {
		return -1
	}
	return s.Queue.IndexOf(t.ID)
}
