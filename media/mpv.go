package media

import (
	"crypto/rand"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/melody-cli/melody/constant"
	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	eventBuffer       = 64
)

// MPV drives a headless mpv process over its JSON-IPC socket.
// The process is started lazily by the first Load and kept idle between tracks.
type MPV struct {
	ipcMu sync.Mutex // serializes socket requests

	mu         sync.Mutex
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *eventListener
	source     string
	loaded     string
	duration   float64
	entries    map[int]string

	// output settings, kept so a freshly spawned mpv starts with them
	volume float64
	muted  bool

	events    chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

// NewMPV returns an engine that has not started mpv yet.
func NewMPV() *MPV {
	return &MPV{
		entries: make(map[int]string),
		volume:  1,
		events:  make(chan Event, eventBuffer),
		closed:  make(chan struct{}),
	}
}

func (m *MPV) Events() <-chan Event {
	return m.events
}

func (m *MPV) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// Socket returns the IPC socket path, empty before the first Load.
func (m *MPV) Socket() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.socketPath
}

// Load queues uri paused; the controller resumes it on EventCanPlay.
// mpv keeps finished files open, so end of track is reported through
// eof-reached and the file can be rewound and replayed.
func (m *MPV) Load(uri string) error {
	target, err := sanitizeMediaTarget(uri)
	if err != nil {
		return transportErr("load", err)
	}

	if err := m.ensureRunning(); err != nil {
		return transportErr("load", err)
	}

	if _, err := m.sendCommand("set_property", "pause", true); err != nil {
		return transportErr("load", err)
	}

	data, err := m.sendCommand("loadfile", target, "replace")
	if err != nil {
		return transportErr("load", err)
	}

	m.mu.Lock()
	m.source = uri
	m.duration = 0
	if id, ok := entryID(data); ok {
		m.entries[id] = uri
	}
	m.mu.Unlock()

	log.With(log.Fields{"uri": uri}).Debug("mpv loadfile issued")
	return nil
}

func (m *MPV) Play() error {
	if !m.IsRunning() {
		return transportErr("play", fmt.Errorf("mpv is not running"))
	}
	if _, err := m.sendCommand("set_property", "pause", false); err != nil {
		return transportErr("play", err)
	}
	return nil
}

func (m *MPV) Pause() error {
	if !m.IsRunning() {
		return nil
	}
	if _, err := m.sendCommand("set_property", "pause", true); err != nil {
		return transportErr("pause", err)
	}
	return nil
}

func (m *MPV) Seek(seconds float64) error {
	if _, err := m.sendCommand("seek", seconds, "absolute"); err != nil {
		return transportErr("seek", err)
	}
	return nil
}

// SetVolume maps [0, 1] onto mpv's 0-100 scale. Before mpv runs the value is
// only stored and passed on at spawn.
func (m *MPV) SetVolume(volume float64) error {
	m.mu.Lock()
	m.volume = volume
	m.mu.Unlock()

	if !m.IsRunning() {
		return nil
	}
	if _, err := m.sendCommand("set_property", "volume", volume*100); err != nil {
		return transportErr("volume", err)
	}
	return nil
}

func (m *MPV) SetMuted(muted bool) error {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()

	if !m.IsRunning() {
		return nil
	}
	if _, err := m.sendCommand("set_property", "mute", muted); err != nil {
		return transportErr("mute", err)
	}
	return nil
}

// IsRunning reports whether the mpv process is alive and answering.
func (m *MPV) IsRunning() bool {
	m.mu.Lock()
	socket, exited := m.socketPath, m.exited
	m.mu.Unlock()

	if socket == "" || exited == nil {
		return false
	}

	select {
	case <-exited:
		return false
	default:
	}

	_, err := m.sendCommand("get_property", "pid")
	return err == nil
}

// Close quits mpv, killing it if it does not exit in time, and closes Events.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)

		m.mu.Lock()
		listener, cmd, exited, socket := m.listener, m.cmd, m.exited, m.socketPath
		m.mu.Unlock()

		if listener != nil {
			listener.Stop()
		}

		if socket != "" && exited != nil {
			_, _ = m.sendCommand("quit")
			select {
			case <-exited:
			case <-time.After(3 * time.Second):
				_ = killProcess(cmd)
			}
			_ = os.Remove(socket)
		}
	})
	return nil
}

func (m *MPV) ensureRunning() error {
	m.mu.Lock()
	running := m.exited != nil
	if running {
		select {
		case <-m.exited:
			running = false
		default:
		}
	}
	m.mu.Unlock()

	if running {
		return nil
	}
	return m.start()
}

func (m *MPV) start() error {
	socket, err := newSocketPath()
	if err != nil {
		return err
	}

	m.mu.Lock()
	args := mpvArgs(socket, m.volume, m.muted)
	m.mu.Unlock()

	cmd := exec.Command("mpv", args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout, cmd.Stderr, cmd.Stdin = nil, nil, nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := waitForSocket(socket, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	listener := newEventListener(socket, m.handle)

	m.mu.Lock()
	m.socketPath, m.cmd, m.exited, m.listener = socket, cmd, exited, listener
	m.entries = make(map[int]string)
	m.mu.Unlock()

	if err := listener.Start(); err != nil {
		return err
	}

	log.Infof("mpv started with ipc socket %s", socket)
	return nil
}

// handle turns raw mpv notifications into Events.
func (m *MPV) handle(name string, data interface{}) {
	switch name {
	case "duration":
		if d, ok := data.(float64); ok {
			m.mu.Lock()
			m.duration = d
			m.mu.Unlock()
		}

	case "eof-reached":
		if reached, _ := data.(bool); !reached {
			return
		}
		m.mu.Lock()
		source := m.loaded
		m.mu.Unlock()
		if source != "" {
			m.emit(Event{Kind: EventEnded, Source: source})
		}

	case "time-pos":
		pos, ok := data.(float64)
		if !ok {
			return
		}
		m.mu.Lock()
		ev := Event{Kind: EventTimeUpdate, Source: m.loaded, Position: pos, Duration: m.duration}
		m.mu.Unlock()
		if ev.Source != "" {
			m.offer(ev)
		}

	case "file-loaded":
		m.mu.Lock()
		source := m.source
		m.mu.Unlock()

		if path, err := m.sendCommand("get_property", "path"); err == nil {
			if p, ok := path.(string); ok {
				source = m.originalURI(p)
			}
		}

		var duration float64
		if d, err := m.sendCommand("get_property", "duration"); err == nil {
			duration, _ = d.(float64)
		}

		m.mu.Lock()
		m.loaded = source
		if duration > 0 {
			m.duration = duration
		}
		m.mu.Unlock()

		m.emit(Event{Kind: EventCanPlay, Source: source, Duration: duration})

	case "end-file":
		raw, _ := data.(map[string]interface{})
		reason, _ := raw["reason"].(string)

		m.mu.Lock()
		source := m.loaded
		if id, ok := entryID(raw); ok {
			if uri, known := m.entries[id]; known {
				source = uri
				delete(m.entries, id)
			}
		}
		m.mu.Unlock()

		// Other reasons (stop, quit, redirect) follow a replace or shutdown.
		if reason == "error" {
			detail, _ := raw["file_error"].(string)
			m.emit(Event{Kind: EventError, Source: source, Err: transportErr("playback", fmt.Errorf("%s", detail))})
		}
	}
}

// originalURI maps the path mpv reports back to the URI passed to Load.
func (m *MPV) originalURI(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if target, err := sanitizeMediaTarget(m.source); err == nil && target == path {
		return m.source
	}
	for _, uri := range m.entries {
		if target, err := sanitizeMediaTarget(uri); err == nil && target == path {
			return uri
		}
	}
	return path
}

// emit delivers ev unless the engine is closed.
func (m *MPV) emit(ev Event) {
	select {
	case m.events <- ev:
	case <-m.closed:
	}
}

// offer delivers ev if there is room. Progress ticks are superseded by the next one anyway.
func (m *MPV) offer(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func mpvArgs(socket string, volume float64, muted bool) []string {
	mute := "no"
	if muted {
		mute = "yes"
	}

	return []string{
		"--no-terminal",
		"--really-quiet",
		"--no-video",
		"--idle=yes",
		"--keep-open=yes",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		fmt.Sprintf("--title=%s", sanitizeTitle(constant.Melody)),
		fmt.Sprintf("--volume=%d", int(math.Round(volume*100))),
		"--mute=" + mute,
	}
}

func newSocketPath() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.Melody, randomBytes)), nil
}

func waitForSocket(socket string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socket)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socket, socketWaitRetries)
}

func entryID(data interface{}) (int, bool) {
	obj, ok := data.(map[string]interface{})
	if !ok {
		return 0, false
	}
	id, ok := obj["playlist_entry_id"].(float64)
	return int(id), ok
}

// sanitizeMediaTarget validates that a URI is safe to hand to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
