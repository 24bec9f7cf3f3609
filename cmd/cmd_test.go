package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/melody-cli/melody/backend"
	"github.com/melody-cli/melody/key"
	"github.com/melody-cli/melody/playback"
	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/report"
	"github.com/melody-cli/melody/session"
	"github.com/melody-cli/melody/track"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
)

func TestErrUnknownKey(t *testing.T) {
	Convey("Unknown config keys suggest the closest one", t, func() {
		err := errUnknownKey("player.volum")
		So(err.Error(), ShouldContainSubstring, "player.volume")
	})
}

func TestCheckValue(t *testing.T) {
	Convey("Config values are checked against what the player supports", t, func() {
		So(checkValue(key.PlayerBackend, "beep"), ShouldBeNil)
		So(checkValue(key.PlayerBackend, "vlc"), ShouldNotBeNil)
		So(checkValue(key.PlayerVolume, 0.5), ShouldBeNil)
		So(checkValue(key.PlayerVolume, 1.5), ShouldNotBeNil)
		So(checkValue(key.PlayerSeekStep, 0), ShouldNotBeNil)
		So(checkValue(key.LogsLevel, "verbose"), ShouldNotBeNil)
		So(checkValue(key.IconsVariant, "nerd"), ShouldBeNil)
	})

	Convey("Sections come from key prefixes", t, func() {
		So(sections(), ShouldContain, "player")
		So(sections(), ShouldContain, "history")
	})
}

func TestProgressLine(t *testing.T) {
	Convey("Given a snapshot halfway through a track", t, func() {
		snap := session.Snapshot{
			Current:  mo.Some(track.Track{ID: "1", Name: "Night Drive"}),
			Playing:  true,
			Position: 61,
			Duration: 122,
		}

		line := progressLine(snap, progress.New(progress.WithoutPercentage()), 120)

		Convey("It names the track and shows both clocks", func() {
			So(line, ShouldContainSubstring, "Night Drive")
			So(line, ShouldContainSubstring, "1:01 / 2:02")
		})
	})
}

func TestPrintTracks(t *testing.T) {
	Convey("Given two tracks", t, func() {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		printTracks(cmd, []track.Track{
			{ID: "1", Name: "One", Duration: 60},
			{ID: "22", Name: "Two", Duration: 90},
		})

		Convey("Each gets a line and the total is summed", func() {
			So(out.String(), ShouldContainSubstring, "One")
			So(out.String(), ShouldContainSubstring, "Two")
			So(out.String(), ShouldContainSubstring, "2 tracks")
			So(out.String(), ShouldContainSubstring, "2 min 30 sec")
		})
	})

	Convey("No tracks prints a placeholder", t, func() {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		printTracks(cmd, nil)
		So(out.String(), ShouldContainSubstring, "no tracks")
	})
}

type failingRemote struct{}

func (failingRemote) IncrementPlay(context.Context, string) error {
	return errors.New("503")
}

func (failingRemote) RecordStream(context.Context, string) error {
	return nil
}

func TestWatchFailures(t *testing.T) {
	Convey("Given a dispatcher whose view increment fails", t, func() {
		var (
			mu    sync.Mutex
			notes []playback.Notification
		)
		d := report.New(report.Config{Remote: failingRemote{}})
		watchFailures(d, playback.NotifierFunc(func(n playback.Notification) {
			mu.Lock()
			defer mu.Unlock()
			notes = append(notes, n)
		}))

		d.ReportPlay("7")
		d.Wait()

		Convey("The listener is warned once", func() {
			So(notes, ShouldHaveLength, 1)
			So(notes[0].Level, ShouldEqual, playback.LevelWarn)
			So(notes[0].Message, ShouldEqual, "Failed to increment view count")
		})
	})

	Convey("Unknown errors still produce a warning", t, func() {
		n := failureNotice(errors.New("boom"))
		So(n.Level, ShouldEqual, playback.LevelWarn)
		So(n.Message, ShouldEqual, "A play report failed")
	})
}

func TestCollectionQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backend with an album, a playlist and liked songs", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/album/list/al1":
				_, _ = w.Write([]byte(`{"data":{"id":"al1","name":"Dusk","songs":[{"id":"3"},{"id":"1"}]}}`))
			case "/api/album/list/empty":
				_, _ = w.Write([]byte(`{"data":{"id":"empty","name":"Silence","songs":[]}}`))
			case "/api/playlist/list/p1":
				_, _ = w.Write([]byte(`{"data":{"id":"p1","title":"Focus","songs":[{"id":"2"}]}}`))
			case "/api/user/like/song/list":
				_, _ = w.Write([]byte(`{"data":[{"id":"1"},{"id":"2"}]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		client := backend.New(srv.URL, func() (string, error) { return "jwt", nil }).WithHTTPClient(srv.Client())
		ids := func(tracks []track.Track) []string {
			out := make([]string, 0, len(tracks))
			for _, t := range tracks {
				out = append(out, t.ID)
			}
			return out
		}

		Convey("An album plays in album order", func() {
			tracks, err := collectionQueue(ctx, client, queueSource{album: "al1"})
			So(err, ShouldBeNil)
			So(ids(tracks), ShouldResemble, []string{"3", "1"})
		})

		Convey("A playlist and the liked songs are queues too", func() {
			tracks, err := collectionQueue(ctx, client, queueSource{playlist: "p1"})
			So(err, ShouldBeNil)
			So(ids(tracks), ShouldResemble, []string{"2"})

			tracks, err = collectionQueue(ctx, client, queueSource{liked: true})
			So(err, ShouldBeNil)
			So(ids(tracks), ShouldResemble, []string{"1", "2"})
		})

		Convey("An empty collection is an empty queue", func() {
			_, err := collectionQueue(ctx, client, queueSource{album: "empty"})
			So(errors.Is(err, queue.ErrEmptyQueue), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Silence")
		})

		Convey("A missing album is an error", func() {
			_, err := collectionQueue(ctx, client, queueSource{album: "nope"})
			var apiErr *backend.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
		})

		Convey("No source means no collection", func() {
			So(queueSource{}.empty(), ShouldBeTrue)
			tracks, err := collectionQueue(ctx, client, queueSource{})
			So(err, ShouldBeNil)
			So(tracks, ShouldBeEmpty)
		})
	})
}

func TestPrintCollections(t *testing.T) {
	Convey("Albums and playlists print their label and size", t, func() {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		printCollections(cmd, []backend.Collection{
			{ID: "al1", Name: "Dusk", Songs: []track.Track{{ID: "1"}, {ID: "2"}}},
			{ID: "p1", Title: "Focus"},
		}, "albums")

		So(out.String(), ShouldContainSubstring, "Dusk")
		So(out.String(), ShouldContainSubstring, "2 tracks")
		So(out.String(), ShouldContainSubstring, "Focus")
	})

	Convey("Nothing to list prints a placeholder", t, func() {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		printCollections(cmd, nil, "playlists")
		So(out.String(), ShouldContainSubstring, "no playlists")
	})
}
