// Package playback implements the transport controller: the only owner of the
// media resource and the only writer of the session state.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/media"
	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/session"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
	"github.com/samber/mo"
)

// Reporter receives play reports. It must return without waiting on I/O.
type Reporter interface {
	ReportPlay(trackID string)
}

// Options wires a Controller. Catalog and Resource are required.
type Options struct {
	Catalog  *track.Catalog
	Resource media.Resource
	Resolver *queue.Resolver
	Reporter Reporter
	Notifier Notifier
	// Volume is the starting output volume in [0, 1].
	Volume float64
	// OnChange runs after every state change, outside the controller lock.
	OnChange func()
}

// Controller serializes every transport operation and resource event behind one mutex.
type Controller struct {
	mu       sync.Mutex
	catalog  *track.Catalog
	resource media.Resource
	resolver *queue.Resolver
	reporter Reporter
	notifier Notifier
	onChange func()

	state *session.State
	phase Phase

	// loaded is the URI of the last successful Load. Events for any other URI are stale.
	loaded      string
	pendingSeek mo.Option[float64]
}

// New returns a controller in PhaseIdle with nothing selected.
func New(opts Options) *Controller {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = queue.NewResolver()
	}

	c := &Controller{
		catalog:     opts.Catalog,
		resource:    opts.Resource,
		resolver:    resolver,
		reporter:    opts.Reporter,
		notifier:    opts.Notifier,
		onChange:    opts.OnChange,
		state:       session.New(opts.Volume),
		phase:       PhaseIdle,
		pendingSeek: mo.None[float64](),
	}

	if err := c.resource.SetVolume(c.state.Volume()); err != nil {
		log.Warnf("initial volume not applied: %v", err)
	}
	return c
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// Phase returns the current transport phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Bootstrap selects first without playing it when nothing is current yet.
// It is meant to be registered as the catalog's load hook.
func (c *Controller) Bootstrap(first track.Track) {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Current().IsPresent() {
		return
	}

	if err := c.selectLocked(first); err != nil {
		c.notify(LevelError, "Could not load %s", first.Name)
		return
	}
	c.state.SetPlaying(false)
}

// PlayTrack makes id current, replaces the active queue with q and starts playback.
// Unknown ids and failed loads leave the session untouched.
func (c *Controller) PlayTrack(ctx context.Context, id string, q queue.Queue) error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return c.playTrackLocked(id, q)
}

// Play resumes the current track, reloading it if an earlier load failed.
func (c *Controller) Play() error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playLocked()
}

// Pause suspends playback. A pause during loading keeps the track from starting.
func (c *Controller) Pause() error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pauseLocked()
}

// TogglePlay pauses when playing and plays otherwise.
func (c *Controller) TogglePlay() error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Playing() {
		return c.pauseLocked()
	}
	return c.playLocked()
}

// Next advances through the effective queue under the current mode.
func (c *Controller) Next() error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextLocked()
}

// Previous steps back through the effective queue. Shuffle is not consulted.
func (c *Controller) Previous() error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	effective := queue.Effective(c.state.Queue(), c.catalog.IDs())
	id, err := c.resolver.Previous(c.state.CurrentID(), effective)
	if err != nil {
		c.notify(LevelWarn, "Nothing to go back to")
		return err
	}
	return c.playTrackLocked(id, effective)
}

// SeekFraction seeks to f of the current duration, f being a position on the seek bar.
func (c *Controller) SeekFraction(f float64) error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	if math.IsNaN(f) {
		f = 0
	}
	return c.seekLocked(util.Clamp(f, 0, 1) * c.state.Duration())
}

// SeekTo seeks to an absolute position, clamped to [0, duration].
// Seeking starts playback when paused.
func (c *Controller) SeekTo(seconds float64) error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(seconds)
}

// SeekBy moves the playhead by delta seconds.
func (c *Controller) SeekBy(delta float64) error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(c.state.Position() + delta)
}

// SetVolume stores v clamped to [0, 1]. Mute is left alone.
func (c *Controller) SetVolume(v float64) error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setVolumeLocked(v)
}

// StepVolume changes the volume by delta, rounded to two decimals.
func (c *Controller) StepVolume(delta float64) error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	v := math.Round((c.state.Volume()+delta)*100) / 100
	return c.setVolumeLocked(v)
}

// ToggleMute silences or restores output without touching the stored volume.
func (c *Controller) ToggleMute() error {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	muted := c.state.ToggleMute()
	if err := c.resource.SetMuted(muted); err != nil {
		c.state.ToggleMute()
		c.notify(LevelError, "Could not change mute")
		return err
	}
	return nil
}

// ToggleLoop turns looping on, which turns shuffle off, or turns it off.
func (c *Controller) ToggleLoop() session.Mode {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ToggleLoop()
}

// ToggleShuffle turns shuffling on, which turns loop off, or turns it off.
func (c *Controller) ToggleShuffle() session.Mode {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ToggleShuffle()
}

// HandleEvent applies one resource event. Events for a source other than the
// one currently loaded are dropped.
func (c *Controller) HandleEvent(ev media.Event) {
	defer c.changed()
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Source == "" || ev.Source != c.loaded {
		log.With(log.Fields{"event": ev.Kind.String(), "source": ev.Source, "loaded": c.loaded}).Debug("stale media event dropped")
		return
	}

	switch ev.Kind {
	case media.EventCanPlay:
		c.onCanPlayLocked(ev)
	case media.EventTimeUpdate:
		if c.phase.Loaded() {
			c.state.SetProgress(ev.Position, ev.Duration)
		}
	case media.EventEnded:
		c.onEndedLocked()
	case media.EventError:
		c.onErrorLocked(ev.Err)
	}
}

// Run feeds resource events into HandleEvent until ctx is done or the resource closes its channel.
func (c *Controller) Run(ctx context.Context) error {
	events := c.resource.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.HandleEvent(ev)
		}
	}
}

// Close releases the media resource.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.SetPlaying(false)
	return c.resource.Close()
}

func (c *Controller) playTrackLocked(id string, q queue.Queue) error {
	t, err := c.catalog.FindByID(id)
	if err != nil {
		msg := fmt.Sprintf("Track %s not found", id)
		if closest, ok := c.catalog.Closest(id).Get(); ok {
			msg += fmt.Sprintf(", did you mean %s?", closest)
		}
		c.notify(LevelWarn, "%s", msg)
		return err
	}

	sameSource := c.state.CurrentID() == t.ID && c.loaded == t.Audio && c.loaded != ""
	if !sameSource {
		if err := c.selectLocked(t); err != nil {
			c.notify(LevelError, "Could not load %s", t.Name)
			return err
		}
	} else if c.phase == PhaseEnded {
		c.rewindLocked()
	}

	c.state.SetQueue(q)
	c.state.SetPlaying(true)

	if c.phase.Loaded() {
		if err := c.startLocked(); err != nil {
			return err
		}
	}

	log.With(log.Fields{"track": t.ID, "queue": len(q)}).Info("track selected")
	if c.reporter != nil {
		c.reporter.ReportPlay(t.ID)
	}
	return nil
}

// selectLocked issues the source change for t and makes it current.
// Nothing changes when the resource rejects the load.
func (c *Controller) selectLocked(t track.Track) error {
	if err := c.resource.Load(t.Audio); err != nil {
		return fmt.Errorf("load %s: %w", t.ID, err)
	}

	c.enter(PhaseLoading)
	c.loaded = t.Audio
	c.pendingSeek = mo.None[float64]()
	c.state.SetCurrent(t)
	return nil
}

func (c *Controller) playLocked() error {
	current, ok := c.state.Current().Get()
	if !ok {
		return nil
	}

	if c.loaded == "" {
		if err := c.selectLocked(current); err != nil {
			c.state.SetPlaying(false)
			c.notify(LevelError, "Could not load %s", current.Name)
			return err
		}
	}

	c.state.SetPlaying(true)
	if c.phase.Loaded() {
		return c.startLocked()
	}
	return nil
}

func (c *Controller) pauseLocked() error {
	c.state.SetPlaying(false)
	if !c.phase.Loaded() {
		return nil
	}

	if err := c.resource.Pause(); err != nil {
		c.notify(LevelError, "Could not pause")
		return err
	}
	if c.phase == PhasePlaying || c.phase == PhaseReady {
		c.enter(PhasePaused)
	}
	return nil
}

// startLocked asks the resource to play. A rejection is reported and reflected
// in the playing flag instead of being retried.
func (c *Controller) startLocked() error {
	if c.phase == PhaseEnded {
		c.rewindLocked()
	}

	if err := c.resource.Play(); err != nil {
		c.state.SetPlaying(false)
		c.notify(LevelError, "Playback failed")
		return err
	}
	c.enter(PhasePlaying)
	return nil
}

func (c *Controller) nextLocked() error {
	effective := queue.Effective(c.state.Queue(), c.catalog.IDs())
	policy := queue.Policy{Shuffling: c.state.Mode().Shuffling()}

	id, err := c.resolver.Next(c.state.CurrentID(), effective, policy)
	if err != nil {
		c.notify(LevelWarn, "Nothing to play next")
		return err
	}
	return c.playTrackLocked(id, effective)
}

func (c *Controller) seekLocked(seconds float64) error {
	if !c.state.Current().IsPresent() {
		return nil
	}

	c.state.SetPosition(seconds)
	target := c.state.Position()

	if !c.phase.Loaded() {
		c.pendingSeek = mo.Some(target)
	} else if err := c.resource.Seek(target); err != nil {
		c.notify(LevelError, "Could not seek")
		return err
	} else if c.phase == PhaseEnded && target < c.state.Duration() {
		c.enter(PhasePaused)
	}

	if c.state.Playing() {
		return nil
	}
	return c.playLocked()
}

func (c *Controller) setVolumeLocked(v float64) error {
	stored := c.state.SetVolume(v)
	if err := c.resource.SetVolume(stored); err != nil {
		c.notify(LevelError, "Could not change volume")
		return err
	}
	return nil
}

func (c *Controller) rewindLocked() {
	c.state.SetPosition(0)
	if err := c.resource.Seek(0); err != nil {
		log.Warnf("rewind failed: %v", err)
	}
}

func (c *Controller) onCanPlayLocked(ev media.Event) {
	if c.phase != PhaseLoading {
		return
	}

	c.enter(PhaseReady)
	if ev.Duration > 0 {
		c.state.SetProgress(c.state.Position(), ev.Duration)
	}

	if pos, ok := c.pendingSeek.Get(); ok {
		c.pendingSeek = mo.None[float64]()
		c.state.SetPosition(pos)
		if err := c.resource.Seek(c.state.Position()); err != nil {
			log.Warnf("deferred seek failed: %v", err)
		}
	}

	if c.state.Playing() {
		_ = c.startLocked()
	}
}

func (c *Controller) onEndedLocked() {
	if c.phase != PhasePlaying && c.phase != PhasePaused {
		return
	}

	c.enter(PhaseEnded)
	c.state.SetPosition(c.state.Duration())

	if c.state.Mode().Looping() {
		c.rewindLocked()
		_ = c.startLocked()
		return
	}

	if err := c.nextLocked(); err != nil {
		c.state.SetPlaying(false)
		if errors.Is(err, queue.ErrEmptyQueue) {
			c.enter(PhaseIdle)
			c.loaded = ""
		}
	}
}

func (c *Controller) onErrorLocked(err error) {
	name := c.loaded
	if t, ok := c.state.Current().Get(); ok {
		name = t.Name
	}

	c.enter(PhaseIdle)
	c.loaded = ""
	c.pendingSeek = mo.None[float64]()
	c.state.SetPlaying(false)

	log.Errorf("media error: %v", err)
	c.notify(LevelError, "Could not play %s", name)
}

// enter moves to phase to if the transition table allows it.
func (c *Controller) enter(to Phase) bool {
	if c.phase == to {
		return true
	}
	if !CanTransition(c.phase, to) {
		log.Warnf("illegal phase transition %s -> %s ignored", c.phase, to)
		return false
	}
	c.phase = to
	return true
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
