package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/playback"
)

type (
	changedMsg      struct{}
	notificationMsg playback.Notification
	recordedMsg     string
)

// Bridge carries controller and reporter callbacks into the program loop.
// Its methods never block: the controller calls them while holding its lock,
// possibly from inside Update.
type Bridge struct {
	changes  chan struct{}
	notes    chan playback.Notification
	recorded chan string
}

func NewBridge() *Bridge {
	return &Bridge{
		changes:  make(chan struct{}, 1),
		notes:    make(chan playback.Notification, 16),
		recorded: make(chan string, 4),
	}
}

// Changed signals that the session changed. Pending signals are coalesced.
func (b *Bridge) Changed() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Notify implements playback.Notifier.
func (b *Bridge) Notify(n playback.Notification) {
	select {
	case b.notes <- n:
	default:
		log.Warnf("notification dropped: %s", n.Message)
	}
}

// Recorded signals that a play was stored in the listening history.
func (b *Bridge) Recorded(trackID string) {
	select {
	case b.recorded <- trackID:
	default:
	}
}

func (b *Bridge) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-b.changes
		return changedMsg{}
	}
}

func (b *Bridge) waitForNotification() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-b.notes)
	}
}

func (b *Bridge) waitForRecord() tea.Cmd {
	return func() tea.Msg {
		return recordedMsg(<-b.recorded)
	}
}
