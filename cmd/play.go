package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/melody-cli/melody/auth"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/playback"
	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/session"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringSliceP("queue", "q", []string{}, "Track ids to play through, in order")
	playCmd.Flags().StringP("album", "a", "", "Play through an album, ids are listed by melody albums")
	playCmd.Flags().StringP("playlist", "p", "", "Play through one of your playlists, ids are listed by melody playlists")
	playCmd.Flags().Bool("liked", false, "Play through your liked songs")
	playCmd.Flags().BoolP("loop", "l", false, "Repeat the current track")
	playCmd.Flags().BoolP("shuffle", "s", false, "Pick the next track at random")
	playCmd.Flags().Float64P("volume", "V", -1, "Output volume from 0 to 1")
	playCmd.MarkFlagsMutuallyExclusive("loop", "shuffle")
	playCmd.MarkFlagsMutuallyExclusive("queue", "album", "playlist", "liked")
}

// playCmd plays tracks headlessly, printing a progress line.
var playCmd = &cobra.Command{
	Use:   "play [id]",
	Short: "Play tracks without the interactive interface",
	Long: `Play a track and keep going through the queue until interrupted.
The queue is a list of ids, an album, a playlist or your liked songs.
Without a queue the whole catalog is played in order.`,
	Example: "  melody play 42 --queue 42,7,13\n  melody play --album 64f0c2 --shuffle",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			ids     = lo.Must(cmd.Flags().GetStringSlice("queue"))
			loop    = lo.Must(cmd.Flags().GetBool("loop"))
			shuffle = lo.Must(cmd.Flags().GetBool("shuffle"))
			volume  = lo.Must(cmd.Flags().GetFloat64("volume"))
			source  = queueSource{
				album:    lo.Must(cmd.Flags().GetString("album")),
				playlist: lo.Must(cmd.Flags().GetString("playlist")),
				liked:    lo.Must(cmd.Flags().GetBool("liked")),
			}
		)

		if (source.playlist != "" || source.liked) && !auth.SignedIn() {
			handleErr(errSignedOut)
		}

		p, err := newPlayer(playerOptions{Notifier: playback.NotifierFunc(printNotification)})
		handleErr(err)
		defer util.Ignore(p.Close)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		handleErr(p.catalog.Load(ctx))

		if !source.empty() {
			tracks, err := collectionQueue(ctx, p.client, source)
			handleErr(err)
			// a cached catalog may predate the collection
			p.catalog.Replace(append(p.catalog.Tracks(), tracks...))
			ids = lo.Map(tracks, func(t track.Track, _ int) string { return t.ID })
		}

		var id string
		switch {
		case len(args) == 1:
			id = args[0]
		case len(ids) > 0:
			id = ids[0]
		case p.catalog.Len() > 0:
			id = p.catalog.IDs()[0]
		default:
			handleErr(queue.ErrEmptyQueue)
		}

		if volume >= 0 {
			handleErr(p.controller.SetVolume(volume))
		}
		if loop {
			p.controller.ToggleLoop()
		}
		if shuffle {
			p.controller.ToggleShuffle()
		}

		handleErr(p.controller.PlayTrack(ctx, id, queue.Of(ids...)))

		go func() {
			_ = p.controller.Run(ctx)
		}()

		watch(ctx, p.controller)
		fmt.Println()
	},
}

// watch redraws the progress line until ctx is done or playback stops for good.
func watch(ctx context.Context, c *playback.Controller) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	interactive := util.IsTerminal()
	var last string

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if c.Phase() == playback.PhaseIdle {
			return
		}

		snap := c.Snapshot()
		current := snap.Current.OrEmpty()

		if !interactive {
			if current.ID != last {
				last = current.ID
				fmt.Printf("%s %s (%s)\n", icon.Get(icon.Play), current.Name, snap.Total())
			}
			continue
		}

		width, _, err := util.TerminalSize()
		if err != nil {
			width = 80
		}
		fmt.Print("\r" + progressLine(snap, bar, width))
	}
}

func progressLine(snap session.Snapshot, bar progress.Model, width int) string {
	state := icon.Get(icon.Pause)
	if snap.Playing {
		state = icon.Get(icon.Play)
	}

	timing := fmt.Sprintf("%s / %s", snap.Elapsed(), snap.Total())
	name := snap.Current.OrEmpty().Name

	bar.Width = util.Clamp(width/3, 10, 40)
	line := strings.Join([]string{state, style.Bold(name), bar.ViewAs(snap.Ratio()), timing}, "  ")
	return style.Truncate(width)(line)
}

func printNotification(n playback.Notification) {
	var i icon.Icon
	switch n.Level {
	case playback.LevelError:
		i = icon.Fail
	case playback.LevelWarn:
		i = icon.Warn
	default:
		i = icon.Info
	}
	_, _ = fmt.Fprintf(os.Stderr, "\n%s %s\n", icon.Get(i), n.Message)
}
