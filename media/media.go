// Package media abstracts the single audio output the transport controller drives.
//
// A Resource is asynchronous: Load only starts loading, and readiness, progress,
// completion and failures arrive later on the Events channel. Every event carries
// the URI it belongs to so the controller can drop events from a source it has
// already moved away from.
package media

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTransport marks a play, load or control request the engine rejected.
var ErrTransport = errors.New("media transport error")

// EventKind enumerates what a Resource reports.
type EventKind int

const (
	// EventCanPlay means the source finished loading and can start.
	EventCanPlay EventKind = iota
	// EventTimeUpdate is a progress tick.
	EventTimeUpdate
	// EventEnded means the source played to its natural end.
	EventEnded
	// EventError means loading or playing the source failed.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventCanPlay:
		return "can-play"
	case EventTimeUpdate:
		return "time-update"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a notification from the engine about Source.
type Event struct {
	Kind     EventKind
	Source   string
	Position float64
	Duration float64
	Err      error
}

// Resource is a single audio output.
type Resource interface {
	// Load replaces the current source. It returns once the request is issued.
	Load(uri string) error
	Play() error
	Pause() error
	// Seek moves to an absolute position in seconds.
	Seek(seconds float64) error
	// SetVolume sets output volume in [0, 1].
	SetVolume(volume float64) error
	SetMuted(muted bool) error
	// Source is the URI of the last Load request.
	Source() string
	Events() <-chan Event
	Close() error
}

// Backends lists the engines New accepts.
func Backends() []string {
	return []string{"mpv", "beep"}
}

// New creates the engine named by backend.
func New(backend string) (Resource, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "mpv", "":
		return NewMPV(), nil
	case "beep":
		return NewBeep()
	default:
		return nil, fmt.Errorf("unknown player backend %q, available: %s", backend, strings.Join(Backends(), ", "))
	}
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
}
