package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/melody-cli/melody/auth"
	"github.com/melody-cli/melody/backend"
	"github.com/melody-cli/melody/color"
	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var errSignedOut = errors.New("not signed in, run `melody auth login` first")

func init() {
	rootCmd.AddCommand(albumsCmd)
	rootCmd.AddCommand(playlistsCmd)
}

var albumsCmd = &cobra.Command{
	Use:     "albums",
	Short:   "List albums, play one with `melody play --album <id>`",
	Example: "  melody albums\n  melody play --album 64f0c2",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		albums, err := newClient().Albums(ctx)
		handleErr(err)
		printCollections(cmd, albums, "albums")
	},
}

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List your playlists, play one with `melody play --playlist <id>`",
	Run: func(cmd *cobra.Command, args []string) {
		if !auth.SignedIn() {
			handleErr(errSignedOut)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		lists, err := newClient().Playlists(ctx)
		handleErr(err)
		printCollections(cmd, lists, "playlists")
	},
}

func printCollections(cmd *cobra.Command, collections []backend.Collection, kind string) {
	if len(collections) == 0 {
		cmd.Println(style.Faint("no " + kind))
		return
	}

	idWidth := lo.Max(lo.Map(collections, func(c backend.Collection, _ int) int { return len(c.ID) }))
	for _, c := range collections {
		line := fmt.Sprintf("%s  %s", style.Fg(color.Purple)(fmt.Sprintf("%-*s", idWidth, c.ID)), style.Bold(c.Label()))
		if len(c.Songs) > 0 {
			line += "  " + style.Faint(util.Quantify(len(c.Songs), "track", "tracks"))
		}
		cmd.Println(line)
	}
}

// queueSource names a backend collection to play through instead of explicit ids.
type queueSource struct {
	album    string
	playlist string
	liked    bool
}

func (s queueSource) empty() bool {
	return s.album == "" && s.playlist == "" && !s.liked
}

// collectionQueue fetches the tracks of s in their collection order.
// Albums are public, playlists and liked songs need a session.
func collectionQueue(ctx context.Context, client *backend.Client, s queueSource) ([]track.Track, error) {
	var (
		tracks []track.Track
		name   string
	)

	switch {
	case s.album != "":
		album, err := client.Album(ctx, s.album)
		if err != nil {
			return nil, err
		}
		tracks, name = album.Songs, album.Label()
	case s.playlist != "":
		list, err := client.Playlist(ctx, s.playlist)
		if err != nil {
			return nil, err
		}
		tracks, name = list.Songs, list.Label()
	case s.liked:
		liked, err := client.LikedSongs(ctx)
		if err != nil {
			return nil, err
		}
		tracks, name = liked, "liked songs"
	default:
		return nil, nil
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%s: %w", name, queue.ErrEmptyQueue)
	}
	return tracks, nil
}
