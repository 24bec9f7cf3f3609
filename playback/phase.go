package playback

import "github.com/samber/lo"

// Phase is where the current track is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhasePlaying
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// transitions lists the phases reachable from each phase.
// Loading is reachable from everywhere because a new track always supersedes the old one.
var transitions = map[Phase][]Phase{
	PhaseIdle:    {PhaseLoading},
	PhaseLoading: {PhaseLoading, PhaseReady, PhaseIdle},
	PhaseReady:   {PhaseLoading, PhasePlaying, PhasePaused, PhaseIdle},
	PhasePlaying: {PhaseLoading, PhasePaused, PhaseEnded, PhaseIdle},
	PhasePaused:  {PhaseLoading, PhasePlaying, PhaseEnded, PhaseIdle},
	PhaseEnded:   {PhaseLoading, PhasePlaying, PhasePaused, PhaseIdle},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Phase) bool {
	return lo.Contains(transitions[from], to)
}

// Loaded reports whether the resource holds a source that can be played.
func (p Phase) Loaded() bool {
	return p == PhaseReady || p == PhasePlaying || p == PhasePaused || p == PhaseEnded
}
