package tui

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/melody-cli/melody/internal/ui"
	"github.com/melody-cli/melody/key"
	"github.com/melody-cli/melody/playback"
	"github.com/melody-cli/melody/session"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// footerHeight is the number of lines the now-playing footer takes under a list.
const footerHeight = 3

// statefulBubble holds the whole UI model.
type statefulBubble struct {
	state    state
	previous state
	keymap   *statefulKeymap

	// components
	spinnerC  spinner.Model
	tracksC   list.Model
	recentC   list.Model
	progressC progress.Model
	helpC     help.Model

	controller *playback.Controller
	catalog    *track.Catalog
	bridge     *Bridge
	snapshot   session.Snapshot

	// indicator briefly shows the effect of the last shortcut
	indicator    string
	indicatorSeq int

	seekStep, volumeStep float64
	showDescription      bool
	autoplay             bool

	lastError     error
	width, height int
	notifier      *ui.Model

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState switches to s and remembers the list state to return to.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}
	if b.state == tracksState || b.state == recentState {
		b.previous = b.state
	}
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.previous == b.state {
		b.setState(tracksState)
		return
	}
	b.setState(b.previous)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy - footerHeight

	b.tracksC.SetSize(listWidth, listHeight)
	b.tracksC.Help.Width = listWidth

	b.recentC.SetSize(listWidth, listHeight)
	b.recentC.Help.Width = listWidth

	b.progressC.Width = util.Min(listWidth, 80)

	b.width = width - x
	b.height = height - y
	b.helpC.Width = listWidth
}

// markCurrent flags the list items of the current track.
func (b *statefulBubble) markCurrent() {
	current := b.snapshot.Current.OrEmpty().ID
	for _, l := range []*list.Model{&b.tracksC, &b.recentC} {
		for _, i := range l.Items() {
			if item, ok := i.(*listItem); ok {
				item.marked = current != "" && item.id() == current
			}
		}
	}
}

// fuzzyFilter ranks list items with the same matcher the catalog search uses.
func fuzzyFilter(term string, targets []string) []list.Rank {
	ranks := fuzzy.RankFindFold(term, targets)
	sort.Stable(ranks)

	result := make([]list.Rank, len(ranks))
	for i, r := range ranks {
		result[i] = list.Rank{Index: r.OriginalIndex}
	}
	return result
}

func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		state:      loadingState,
		previous:   tracksState,
		keymap:     keymap,
		controller: options.Controller,
		catalog:    options.Catalog,
		bridge:     options.Bridge,
		snapshot:   options.Controller.Snapshot(),

		seekStep:        float64(viper.GetInt(key.PlayerSeekStep)),
		volumeStep:      viper.GetFloat64(key.PlayerVolumeStep),
		showDescription: viper.GetBool(key.TUIShowDescription),
		autoplay:        viper.GetBool(key.PlayerAutoplay),

		notifier: &ui.Model{},
		options:  options,
	}
	bubble.keymap.setState(loadingState)

	type listOptions struct {
		TitleStyle mo.Option[lipgloss.Style]
	}

	makeList := func(title string, options *listOptions) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = bubble.showDescription
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(style.Text)
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Filter = fuzzyFilter
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		if titleStyle, ok := options.TitleStyle.Get(); ok {
			listC.Styles.Title = titleStyle
		}
		listC.StatusMessageLifetime = 3 * time.Second
		listC.SetShowPagination(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(
		progress.WithGradient(string(style.Green), string(style.Blue)),
		progress.WithoutPercentage(),
	)

	bubble.tracksC = makeList("Tracks", &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.AccentColor).Padding(0, 1),
		),
	})
	bubble.tracksC.SetStatusBarItemName("track", "tracks")

	bubble.recentC = makeList("Recently Played", &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1),
		),
	})
	bubble.recentC.SetStatusBarItemName("entry", "entries")

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
