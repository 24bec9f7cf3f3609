package playback

import (
	"fmt"

	"github.com/melody-cli/melody/log"
)

// Level ranks a Notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a short, transient message for the listener.
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows notifications to the user. Implementations must not block.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

func (c *Controller) notify(level Level, format string, args ...any) {
	n := Notification{Level: level, Message: fmt.Sprintf(format, args...)}
	switch level {
	case LevelError:
		log.Error(n.Message)
	case LevelWarn:
		log.Warn(n.Message)
	default:
		log.Info(n.Message)
	}

	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}
