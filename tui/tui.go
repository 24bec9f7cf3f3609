// Package tui provides the interactive terminal player.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/melody-cli/melody/playback"
	"github.com/melody-cli/melody/track"
)

// Options encapsulates what the terminal user interface drives.
type Options struct {
	Controller *playback.Controller
	Catalog    *track.Catalog
	// Bridge must be the one whose callbacks were handed to Controller.
	Bridge *Bridge
	// Invalidate drops cached catalog data before a manual refresh.
	Invalidate func() error
}

// Run initializes and executes the Bubble Tea application loop.
// It returns when the user quits.
func Run(options *Options) error {
	bubble := newBubble(options)
	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
