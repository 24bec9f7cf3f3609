// Package session holds the authoritative in-memory playback state.
//
// State is plain data: it has no locking and no I/O. The transport controller
// owns the only instance and serializes every mutation, while readers get a
// Snapshot copy.
package session

import (
	"math"

	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
	"github.com/samber/mo"
)

// State is the current track, transport flags and active queue.
type State struct {
	current  mo.Option[track.Track]
	playing  bool
	position float64
	duration float64
	volume   float64
	muted    bool
	mode     Mode
	queue    queue.Queue
}

// New returns an empty session with the given starting volume.
func New(volume float64) *State {
	s := &State{current: mo.None[track.Track]()}
	s.SetVolume(volume)
	return s
}

func (s *State) Current() mo.Option[track.Track] {
	return s.current
}

// CurrentID returns the current track identifier, or "" when nothing is selected.
func (s *State) CurrentID() string {
	if t, ok := s.current.Get(); ok {
		return t.ID
	}
	return ""
}

// SetCurrent replaces the current track. Position restarts at zero and the
// duration falls back to the catalog value until the media reports its own.
func (s *State) SetCurrent(t track.Track) {
	s.current = mo.Some(t)
	s.position = 0
	s.duration = t.Duration.Float()
}

// Clear drops the current track.
func (s *State) Clear() {
	s.current = mo.None[track.Track]()
	s.playing = false
	s.position = 0
	s.duration = 0
}

func (s *State) Playing() bool {
	return s.playing
}

func (s *State) SetPlaying(playing bool) {
	s.playing = playing
}

func (s *State) Position() float64 {
	return s.position
}

func (s *State) Duration() float64 {
	return s.duration
}

// SetProgress records a media progress tick. Position is clamped to
// [0, duration] whenever the duration is known.
func (s *State) SetProgress(position, duration float64) {
	if duration > 0 && !math.IsInf(duration, 0) {
		s.duration = duration
	}
	s.SetPosition(position)
}

// SetPosition moves the playhead, clamped to [0, duration].
func (s *State) SetPosition(position float64) {
	if math.IsNaN(position) || position < 0 {
		position = 0
	}
	if s.duration > 0 {
		position = math.Min(position, s.duration)
	}
	s.position = position
}

func (s *State) Volume() float64 {
	return s.volume
}

// SetVolume stores v clamped to [0, 1] and returns the stored value. The mute flag is untouched.
func (s *State) SetVolume(v float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	s.volume = util.Clamp(v, 0, 1)
	return s.volume
}

func (s *State) Muted() bool {
	return s.muted
}

// ToggleMute flips the mute flag and returns the new value. Volume is kept.
func (s *State) ToggleMute() bool {
	s.muted = !s.muted
	return s.muted
}

// EffectiveVolume is what the output should play at: 0 while muted.
func (s *State) EffectiveVolume() float64 {
	if s.muted {
		return 0
	}
	return s.volume
}

func (s *State) Mode() Mode {
	return s.mode
}

// ToggleLoop switches looping on, clearing shuffle, or back off.
func (s *State) ToggleLoop() Mode {
	if s.mode == ModeLoop {
		s.mode = ModeSequential
	} else {
		s.mode = ModeLoop
	}
	return s.mode
}

// ToggleShuffle switches shuffling on, clearing loop, or back off.
func (s *State) ToggleShuffle() Mode {
	if s.mode == ModeShuffle {
		s.mode = ModeSequential
	} else {
		s.mode = ModeShuffle
	}
	return s.mode
}

func (s *State) Queue() queue.Queue {
	return s.queue
}

// SetQueue replaces the active queue with a copy of q.
func (s *State) SetQueue(q queue.Queue) {
	s.queue = queue.Of(q...)
}

// Snapshot returns an immutable copy for readers.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Current:  s.current,
		Playing:  s.playing,
		Position: s.position,
		Duration: s.duration,
		Volume:   s.volume,
		Muted:    s.muted,
		Mode:     s.mode,
		Queue:    queue.Of(s.queue...),
	}
}
