package media

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/melody-cli/melody/log"
)

// ipcCallback receives mpv notifications. Property changes arrive as (name, value),
// every other event as (event name, raw event object).
type ipcCallback func(name string, data interface{})

// observed lists the properties mpv pushes to the listener connection.
var observed = []string{"time-pos", "duration", "eof-reached"}

// eventListener keeps one persistent IPC connection open and forwards what mpv sends on it.
type eventListener struct {
	socketPath string
	callback   ipcCallback
	conn       net.Conn
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

func newEventListener(socketPath string, callback ipcCallback) *eventListener {
	return &eventListener{
		socketPath: socketPath,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// Start subscribes to the observed properties and begins the read loop.
// Observers are registered on the listener's own connection because mpv only
// delivers property changes to the client that asked for them.
func (el *eventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []interface{}{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	go el.readLoop()

	log.Infof("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop terminates the listener.
func (el *eventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

func (el *eventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	reader := bufio.NewReader(el.conn)
	var pending []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		chunk, err := reader.ReadBytes('\n')
		pending = append(pending, chunk...)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			log.Warnf("event listener read error: %v", err)
			return
		}

		el.processEvent(pending)
		pending = pending[:0]
	}
}

// processEvent parses and dispatches a single newline-delimited JSON message.
func (el *eventListener) processEvent(line []byte) {
	var event map[string]interface{}
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok || el.callback == nil {
		return
	}

	if eventType == "property-change" {
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
		return
	}

	el.callback(eventType, event)
}
