//go:build (linux && cgo) || windows || darwin

package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/melody-cli/melody/constant"
	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/network"
)

const (
	beepSampleRate = beep.SampleRate(44100)
	beepTick       = 500 * time.Millisecond
)

// Beep decodes MP3 sources in-process and plays them through the system speaker.
type Beep struct {
	mu          sync.Mutex
	initialized bool
	generation  uint64
	source      string
	loaded      string
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	level       float64
	muted       bool

	// queued is true while the current stream sits in the speaker mixer.
	// It is cleared from the speaker goroutine when the stream drains.
	queued atomic.Bool

	events    chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

// NewBeep returns the in-process engine.
func NewBeep() (Resource, error) {
	b := &Beep{
		level:  1,
		events: make(chan Event, eventBuffer),
		closed: make(chan struct{}),
	}
	go b.tick()
	return b, nil
}

func (b *Beep) Events() <-chan Event {
	return b.events
}

func (b *Beep) Source() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source
}

// Load stops the current stream and fetches and decodes uri in the background.
// A newer Load supersedes an older one still in flight.
func (b *Beep) Load(uri string) error {
	if strings.TrimSpace(uri) == "" {
		return transportErr("load", fmt.Errorf("empty URL"))
	}

	b.mu.Lock()
	b.generation++
	generation := b.generation
	b.source = uri
	b.stopLocked()
	b.mu.Unlock()

	go b.decode(uri, generation)
	return nil
}

func (b *Beep) decode(uri string, generation uint64) {
	fail := func(err error) {
		log.With(log.Fields{"uri": uri}).Errorf("beep load failed: %v", err)
		b.emit(Event{Kind: EventError, Source: uri, Err: transportErr("load", err)})
	}

	data, err := readSource(uri)
	if err != nil {
		fail(err)
		return
	}

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		fail(fmt.Errorf("decode: %w", err))
		return
	}

	if err := b.initSpeaker(); err != nil {
		streamer.Close()
		fail(fmt.Errorf("speaker: %w", err))
		return
	}

	b.mu.Lock()
	if generation != b.generation {
		b.mu.Unlock()
		streamer.Close()
		return
	}

	b.streamer = streamer
	b.format = format
	b.loaded = uri
	b.ctrl = &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, beepSampleRate, streamer), Paused: true}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2}
	b.applyVolumeLocked()
	duration := format.SampleRate.D(streamer.Len()).Seconds()
	b.enqueueLocked(uri)
	b.mu.Unlock()

	b.emit(Event{Kind: EventCanPlay, Source: uri, Duration: duration})
}

func (b *Beep) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return transportErr("play", fmt.Errorf("no source loaded"))
	}

	if !b.queued.Load() {
		speaker.Lock()
		if b.streamer.Position() >= b.streamer.Len() {
			_ = b.streamer.Seek(0)
		}
		speaker.Unlock()
		b.enqueueLocked(b.loaded)
	}

	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// enqueueLocked hands the stream to the speaker, reporting EventEnded when it drains.
func (b *Beep) enqueueLocked(uri string) {
	b.queued.Store(true)
	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held.
		b.queued.Store(false)
		go b.emit(Event{Kind: EventEnded, Source: uri})
	})))
}

func (b *Beep) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

func (b *Beep) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()

	sample := b.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if last := b.streamer.Len() - 1; sample > last {
		sample = last
	}
	if sample < 0 {
		sample = 0
	}
	if err := b.streamer.Seek(sample); err != nil {
		return transportErr("seek", err)
	}
	return nil
}

func (b *Beep) SetVolume(volume float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = volume
	b.applyVolumeLocked()
	return nil
}

func (b *Beep) SetMuted(muted bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.muted = muted
	b.applyVolumeLocked()
	return nil
}

func (b *Beep) Close() error {
	b.closeOnce.Do(func() {
		close(b.closed)
		b.mu.Lock()
		b.stopLocked()
		b.mu.Unlock()
	})
	return nil
}

// applyVolumeLocked maps the linear level onto beep's logarithmic volume.
func (b *Beep) applyVolumeLocked() {
	if b.volume == nil {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()

	b.volume.Silent = b.muted || b.level <= 0
	if b.level > 0 {
		b.volume.Volume = math.Log2(b.level)
	}
}

func (b *Beep) initSpeaker() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	if err := speaker.Init(beepSampleRate, beepSampleRate.N(time.Second/10)); err != nil {
		return err
	}
	b.initialized = true
	return nil
}

func (b *Beep) stopLocked() {
	if b.initialized {
		speaker.Clear()
	}
	if b.streamer != nil {
		_ = b.streamer.Close()
	}
	b.queued.Store(false)
	b.streamer = nil
	b.ctrl = nil
	b.volume = nil
	b.loaded = ""
}

func (b *Beep) tick() {
	ticker := time.NewTicker(beepTick)
	defer ticker.Stop()

	for {
		select {
		case <-b.closed:
			return
		case <-ticker.C:
			b.mu.Lock()
			if b.streamer == nil || b.ctrl == nil {
				b.mu.Unlock()
				continue
			}
			speaker.Lock()
			paused := b.ctrl.Paused
			pos := b.format.SampleRate.D(b.streamer.Position()).Seconds()
			dur := b.format.SampleRate.D(b.streamer.Len()).Seconds()
			speaker.Unlock()
			source := b.loaded
			b.mu.Unlock()

			if !paused {
				select {
				case b.events <- Event{Kind: EventTimeUpdate, Source: source, Position: pos, Duration: dur}:
				default:
				}
			}
		}
	}
}

func (b *Beep) emit(ev Event) {
	select {
	case b.events <- ev:
	case <-b.closed:
	}
}

// readSource loads a remote or local MP3 fully into memory.
func readSource(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		return filesystem.API().ReadFile(uri)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := network.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", uri, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
