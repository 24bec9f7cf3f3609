// Package ui renders short-lived notifications on top of a bubbletea view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/style"
)

// Lifetime is how long a toast stays on screen.
const Lifetime = 3 * time.Second

type Level int

const (
	Info Level = iota
	Warn
	Error
)

// Toast is the message a Model displays.
type Toast struct {
	Level Level
	Text  string
}

// ClearMsg removes the toast with the matching sequence number.
type ClearMsg struct {
	seq int
}

// Model shows at most one toast at a time. A newer toast replaces the old one.
type Model struct {
	toast Toast
	seq   int
	at    time.Time
}

// Show returns a command that delivers t to the program.
func Show(t Toast) tea.Cmd {
	return func() tea.Msg {
		return t
	}
}

func clearAfter(seq int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearMsg{seq: seq}
	})
}

// Update handles Toast and ClearMsg and ignores everything else.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Toast:
		m.seq++
		m.toast = msg
		m.at = time.Now()
		return clearAfter(m.seq)
	case ClearMsg:
		// an older timer must not clear a newer toast
		if msg.seq == m.seq {
			m.toast = Toast{}
		}
	}
	return nil
}

// Current returns the visible toast, if any.
func (m *Model) Current() (Toast, bool) {
	return m.toast, m.toast.Text != ""
}

// View appends the toast to the last line of content.
func (m *Model) View(content string) string {
	t, ok := m.Current()
	if !ok {
		return content
	}

	var rendered string
	switch t.Level {
	case Warn:
		rendered = lipgloss.NewStyle().Foreground(style.WarningColor).Render(icon.Get(icon.Warn) + " " + t.Text)
	case Error:
		rendered = lipgloss.NewStyle().Foreground(style.ErrorColor).Render(icon.Get(icon.Fail) + " " + t.Text)
	default:
		rendered = style.Faint(t.Text)
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + rendered
	return strings.Join(lines, "\n")
}
