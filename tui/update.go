package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/melody-cli/melody/internal/ui"
	"github.com/melody-cli/melody/log"
)

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(
		b.spinnerC.Tick,
		b.loadCatalog(),
		b.bridge.waitForChange(),
		b.bridge.waitForNotification(),
		b.bridge.waitForRecord(),
	)
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// toasts
	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case changedMsg:
		b.refresh()
		return b, tea.Batch(append(cmds, b.bridge.waitForChange())...)
	case notificationMsg:
		return b, tea.Batch(append(cmds, ui.Show(toToast(msg)), b.bridge.waitForNotification())...)
	case recordedMsg:
		return b, tea.Batch(append(cmds, b.loadRecent(), b.bridge.waitForRecord())...)
	case recentLoadedMsg:
		return b, tea.Batch(append(cmds, b.setRecent(msg))...)
	case indicatorClearMsg:
		if msg.seq == b.indicatorSeq {
			b.indicator = ""
		}
		return b, tea.Batch(cmds...)
	case catalogLoadedMsg:
		return b, tea.Batch(append(cmds, b.onCatalogLoaded(msg.err))...)
	case tea.KeyMsg:
		if matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch b.state {
	case loadingState:
		cmd = b.updateLoading(msg)
	case tracksState:
		cmd = b.updateList(&b.tracksC, msg)
	case recentState:
		cmd = b.updateList(&b.recentC, msg)
	case playerState:
		cmd = b.updatePlayer(msg)
	case errorState:
		cmd = b.updateError(msg)
	}

	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) onCatalogLoaded(err error) tea.Cmd {
	if err != nil && b.catalog.Len() == 0 {
		b.raiseError(err)
		return nil
	}

	b.tracksC.StopSpinner()
	cmds := []tea.Cmd{b.setTracks(), b.loadRecent()}
	if err != nil {
		cmds = append(cmds, ui.Show(ui.Toast{Level: ui.Warn, Text: "Catalog refresh failed"}))
	}

	if b.state == loadingState || b.state == errorState {
		b.setState(tracksState)
	}

	b.refresh()
	if b.autoplay && !b.snapshot.Playing && b.snapshot.Current.IsPresent() {
		if err := b.controller.Play(); err != nil {
			log.Warnf("autoplay: %v", err)
		}
		b.refresh()
	}
	return tea.Batch(cmds...)
}

func (b *statefulBubble) updateLoading(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return cmd
	case tea.KeyMsg:
		if matches(msg, b.keymap.quit) {
			return tea.Quit
		}
	}
	return nil
}

func (b *statefulBubble) updateList(l *list.Model, msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && !l.SettingFilter() {
		switch {
		case matches(msg, b.keymap.confirm):
			return b.playSelected(l)
		case matches(msg, b.keymap.switchView):
			b.cycleView()
			if b.state == recentState {
				return b.loadRecent()
			}
			return nil
		case b.state == tracksState && matches(msg, b.keymap.reload):
			return b.reloadCatalog()
		}

		if cmd, ok := b.handleTransport(msg, false); ok {
			return cmd
		}
	}

	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return cmd
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) tea.Cmd {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case matches(msgKey, b.keymap.quit):
		return tea.Quit
	case matches(msgKey, b.keymap.back):
		b.previousState()
		return nil
	case matches(msgKey, b.keymap.switchView):
		b.cycleView()
		return nil
	case matches(msgKey, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	}

	cmd, _ := b.handleTransport(msgKey, true)
	return cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case matches(msgKey, b.keymap.retry):
		b.setState(loadingState)
		return tea.Batch(b.spinnerC.Tick, b.loadCatalog())
	case matches(msgKey, b.keymap.quit), matches(msgKey, b.keymap.back):
		return tea.Quit
	}
	return nil
}

// cycleView goes tracks, recent, player and back to tracks.
func (b *statefulBubble) cycleView() {
	switch b.state {
	case tracksState:
		b.newState(recentState)
	case recentState:
		b.newState(playerState)
	default:
		b.newState(tracksState)
	}
}

// reloadCatalog refetches the catalog, keeping the current list until it arrives.
func (b *statefulBubble) reloadCatalog() tea.Cmd {
	if invalidate := b.options.Invalidate; invalidate != nil {
		if err := invalidate(); err != nil {
			log.Warnf("catalog cache: %v", err)
		}
	}

	cmd := b.tracksC.NewStatusMessage("Refreshing...")
	return tea.Batch(cmd, b.tracksC.StartSpinner(), b.loadCatalog())
}
