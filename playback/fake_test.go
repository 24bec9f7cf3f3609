package playback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/melody-cli/melody/media"
)

// fakeResource records every call and never emits on its own;
// tests drive it by passing events to HandleEvent.
type fakeResource struct {
	mu      sync.Mutex
	source  string
	loads   []string
	plays   int
	pauses  int
	seeks   []float64
	volume  float64
	muted   bool
	closed  bool
	loadErr error
	playErr error
	muteErr error
	events  chan media.Event
}

func newFakeResource() *fakeResource {
	return &fakeResource{events: make(chan media.Event, 16)}
}

func (f *fakeResource) Load(uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return fmt.Errorf("load: %w: %v", media.ErrTransport, f.loadErr)
	}
	f.source = uri
	f.loads = append(f.loads, uri)
	return nil
}

func (f *fakeResource) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return fmt.Errorf("play: %w: %v", media.ErrTransport, f.playErr)
	}
	f.plays++
	return nil
}

func (f *fakeResource) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	return nil
}

func (f *fakeResource) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakeResource) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
	return nil
}

func (f *fakeResource) SetMuted(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.muteErr != nil {
		return fmt.Errorf("mute: %w: %v", media.ErrTransport, f.muteErr)
	}
	f.muted = muted
	return nil
}

func (f *fakeResource) Source() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

func (f *fakeResource) Events() <-chan media.Event {
	return f.events
}

func (f *fakeResource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// effectiveVolume is what a listener would hear.
func (f *fakeResource) effectiveVolume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.muted {
		return 0
	}
	return f.volume
}

func (f *fakeResource) lastSeek() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.seeks) == 0 {
		return -1
	}
	return f.seeks[len(f.seeks)-1]
}

type fakeReporter struct {
	mu     sync.Mutex
	played []string
}

func (r *fakeReporter) ReportPlay(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, id)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *recordingNotifier) Notify(x Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, x)
}

func (n *recordingNotifier) last() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return Notification{}
	}
	return n.items[len(n.items)-1]
}

var errRejected = errors.New("rejected")
