package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/melody-cli/melody/history"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
)

// listItem implements list.Item for catalog tracks and history entries.
type listItem struct {
	internal interface{}
	// marked is set on the item of the current track.
	marked bool
}

func (t *listItem) id() string {
	switch e := t.internal.(type) {
	case track.Track:
		return e.ID
	case *history.Entry:
		return e.TrackID
	default:
		return ""
	}
}

func (t *listItem) getMark() string {
	return lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Play))
}

func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case track.Track:
		title = e.Name
	case *history.Entry:
		title = e.Name
	default:
		title = t.FilterValue()
	}

	if title != "" && t.marked {
		title = fmt.Sprintf("%s %s", title, t.getMark())
	}
	return
}

func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case track.Track:
		parts := []string{util.FormatClock(e.Duration.Float())}
		if e.Description != "" {
			parts = append(parts, e.Description)
		}
		description = strings.Join(parts, " • ")
	case *history.Entry:
		description = strings.Join([]string{
			util.FormatClock(e.Duration),
			util.Quantify(e.Plays, "play", "plays"),
			lipgloss.NewStyle().Foreground(style.FaintColor).Render(humanize.Time(e.LastPlayed)),
		}, " • ")
	}
	return
}

// FilterValue is what the search box matches against.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case track.Track:
		return e.Name + " " + e.Description
	case *history.Entry:
		return e.Name
	case string:
		return e
	default:
		return ""
	}
}
