package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/melody-cli/melody/color"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/style"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case tracksState:
		output = b.viewList(&b.tracksC)
	case recentState:
		output = b.viewList(&b.recentC)
	case playerState:
		output = b.viewPlayer()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " Fetching tracks",
		},
	)
}

func (b *statefulBubble) viewList(l interface{ View() string }) string {
	return listExtraPaddingStyle.Render(l.View()) + "\n" + b.viewFooter()
}

// viewFooter is the compact now-playing line shown under the lists.
func (b *statefulBubble) viewFooter() string {
	current, ok := b.snapshot.Current.Get()
	if !ok {
		return paddingStyle.Render(style.Faint("Nothing playing"))
	}

	bar := b.progressC
	bar.Width = 20

	line := fmt.Sprintf(
		"%s %s  %s  %s / %s  %s",
		b.stateIcon(),
		style.Bold(current.Name),
		bar.ViewAs(b.snapshot.Ratio()),
		b.snapshot.Elapsed(),
		b.snapshot.Total(),
		b.viewVolume(),
	)
	if b.indicator != "" {
		line += "  " + style.Fg(color.Yellow)(b.indicator)
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(style.Truncate(b.width)(line))
}

func (b *statefulBubble) viewPlayer() string {
	lines := []string{style.Title("Now Playing"), ""}

	current, ok := b.snapshot.Current.Get()
	if !ok {
		lines = append(lines, style.Faint("Nothing selected. Press tab to pick a track."))
		return b.renderLines(true, lines)
	}

	lines = append(lines, style.Truncate(b.width)(fmt.Sprintf("%s %s", icon.Get(icon.Track), style.Fg(style.AccentColor)(style.Bold(current.Name)))))
	if b.showDescription && current.Description != "" {
		lines = append(lines, strings.Split(style.Faint(wrap.String(wordwrap.String(current.Description, b.width), b.width)), "\n")...)
	}

	lines = append(lines,
		"",
		b.progressC.ViewAs(b.snapshot.Ratio()),
		fmt.Sprintf("%s / %s  %s", b.snapshot.Elapsed(), b.snapshot.Total(), style.Faint(fmt.Sprintf("%d%%", b.snapshot.Percent()))),
		"",
		strings.Join([]string{b.stateIcon() + " " + b.playingLabel(), b.viewVolume(), b.viewMode()}, "   "),
		"",
		style.Fg(color.Yellow)(b.indicator),
	)

	return b.renderLines(true, lines)
}

func (b *statefulBubble) stateIcon() string {
	if b.snapshot.Playing {
		return icon.Get(icon.Play)
	}
	return icon.Get(icon.Pause)
}

func (b *statefulBubble) playingLabel() string {
	if b.snapshot.Playing {
		return "Playing"
	}
	return "Paused"
}

func (b *statefulBubble) viewVolume() string {
	if b.snapshot.Muted {
		return icon.Get(icon.Mute) + " " + style.Faint("muted")
	}
	return fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(math.Round(b.snapshot.Volume*100)))
}

func (b *statefulBubble) viewMode() string {
	tag := func(i icon.Icon, label string, on bool) string {
		if on {
			return style.Tag(style.Base, style.AccentColor)(icon.Get(i) + " " + label)
		}
		return style.Faint(icon.Get(i) + " " + label)
	}

	return tag(icon.Loop, "loop", b.snapshot.Looping()) + " " + tag(icon.Shuffle, "shuffle", b.snapshot.Shuffling())
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	errorBody := errorStyle.Render(b.lastError.Error())
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Could not load the catalog:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
