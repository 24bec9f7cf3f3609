package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/melody-cli/melody/history"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/internal/ui"
	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/playback"
	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/track"
	"github.com/samber/lo"
)

// indicatorLifetime is how long a shortcut indicator stays visible.
const indicatorLifetime = 1200 * time.Millisecond

type (
	catalogLoadedMsg  struct{ err error }
	recentLoadedMsg   []*history.Entry
	indicatorClearMsg struct{ seq int }
)

func (b *statefulBubble) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return catalogLoadedMsg{err: b.catalog.Load(ctx)}
	}
}

func (b *statefulBubble) loadRecent() tea.Cmd {
	return func() tea.Msg {
		entries, err := history.Recent()
		if err != nil {
			log.Warnf("history: %v", err)
			return ui.Toast{Level: ui.Warn, Text: "Could not read history"}
		}
		return recentLoadedMsg(entries)
	}
}

func (b *statefulBubble) setTracks() tea.Cmd {
	items := lo.Map(b.catalog.Tracks(), func(t track.Track, _ int) list.Item {
		return &listItem{internal: t}
	})
	cmd := b.tracksC.SetItems(items)
	b.markCurrent()
	return cmd
}

func (b *statefulBubble) setRecent(entries []*history.Entry) tea.Cmd {
	items := lo.Map(entries, func(e *history.Entry, _ int) list.Item {
		return &listItem{internal: e}
	})
	cmd := b.recentC.SetItems(items)
	b.markCurrent()
	return cmd
}

// playSelected plays the selected item with the visible items as the queue.
func (b *statefulBubble) playSelected(l *list.Model) tea.Cmd {
	item, ok := l.SelectedItem().(*listItem)
	if !ok {
		return nil
	}

	ids := lo.FilterMap(l.VisibleItems(), func(i list.Item, _ int) (string, bool) {
		li, ok := i.(*listItem)
		if !ok {
			return "", false
		}
		return li.id(), li.id() != ""
	})

	if err := b.controller.PlayTrack(context.Background(), item.id(), queue.Of(ids...)); err != nil {
		log.Debugf("play %s: %v", item.id(), err)
		return nil
	}
	b.refresh()
	return nil
}

// refresh re-reads the controller state.
func (b *statefulBubble) refresh() {
	b.snapshot = b.controller.Snapshot()
	b.markCurrent()
}

func (b *statefulBubble) showIndicator(text string) tea.Cmd {
	b.indicatorSeq++
	b.indicator = text
	seq := b.indicatorSeq
	return tea.Tick(indicatorLifetime, func(time.Time) tea.Msg {
		return indicatorClearMsg{seq: seq}
	})
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// handleTransport applies a playback shortcut and reports whether msg was one.
// Arrow keys only control the volume when arrows is set, since lists use them for navigation.
func (b *statefulBubble) handleTransport(msg tea.KeyMsg, arrows bool) (tea.Cmd, bool) {
	var (
		c         = b.controller
		keymap    = b.keymap
		err       error
		indicator func() string
	)

	volume := func() string {
		s := c.Snapshot()
		if s.Muted {
			return icon.Get(icon.Mute) + " Muted"
		}
		return fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(math.Round(s.Volume*100)))
	}

	switch {
	case matches(msg, keymap.togglePlay):
		err = c.TogglePlay()
		indicator = func() string {
			if c.Snapshot().Playing {
				return icon.Get(icon.Play) + " Play"
			}
			return icon.Get(icon.Pause) + " Pause"
		}
	case matches(msg, keymap.seekForward):
		err = c.SeekBy(b.seekStep)
		indicator = func() string { return fmt.Sprintf("%s +%.0fs", icon.Get(icon.Next), b.seekStep) }
	case matches(msg, keymap.seekBackward):
		err = c.SeekBy(-b.seekStep)
		indicator = func() string { return fmt.Sprintf("%s -%.0fs", icon.Get(icon.Previous), b.seekStep) }
	case arrows && matches(msg, keymap.volumeUp), matches(msg, keymap.louder):
		err = c.StepVolume(b.volumeStep)
		indicator = volume
	case arrows && matches(msg, keymap.volumeDown), matches(msg, keymap.quieter):
		err = c.StepVolume(-b.volumeStep)
		indicator = volume
	case matches(msg, keymap.mute):
		err = c.ToggleMute()
		indicator = volume
	case matches(msg, keymap.next):
		err = c.Next()
		indicator = func() string { return icon.Get(icon.Next) + " Next" }
	case matches(msg, keymap.previous):
		err = c.Previous()
		indicator = func() string { return icon.Get(icon.Previous) + " Previous" }
	case matches(msg, keymap.loop):
		mode := c.ToggleLoop()
		indicator = func() string { return icon.Get(icon.Loop) + " Loop " + onOff(mode.Looping()) }
	case matches(msg, keymap.shuffle):
		mode := c.ToggleShuffle()
		indicator = func() string { return icon.Get(icon.Shuffle) + " Shuffle " + onOff(mode.Shuffling()) }
	default:
		return nil, false
	}

	b.refresh()
	if err != nil {
		// the controller has already notified the user
		log.Debugf("shortcut %q: %v", msg.String(), err)
		return nil, true
	}
	return b.showIndicator(indicator()), true
}

func toToast(n notificationMsg) ui.Toast {
	switch n.Level {
	case playback.LevelError:
		return ui.Toast{Level: ui.Error, Text: n.Message}
	case playback.LevelWarn:
		return ui.Toast{Level: ui.Warn, Text: n.Message}
	default:
		return ui.Toast{Level: ui.Info, Text: n.Message}
	}
}
