package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

type recorded struct {
	method, path, auth, requestID string
	body                          map[string]string
}

func newServer(handler http.HandlerFunc) (*httptest.Server, *[]recorded) {
	var mu sync.Mutex
	var calls []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method:    r.Method,
			path:      r.URL.Path,
			auth:      r.Header.Get("Authorization"),
			requestID: r.Header.Get("X-Request-ID"),
		}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)

		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()

		handler(w, r)
	}))
	return srv, &calls
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	Convey("Given a healthy backend", t, func() {
		srv, calls := newServer(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/song/list":
				_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"1","name":"A","desc":"x","audio":"https://cdn/a.mp3","duration":"10"},{"id":"2","name":"B","duration":20}]}`))
			case "/api/album/list":
				_, _ = w.Write([]byte(`{"data":[{"id":"al1","name":"Dusk"},{"id":"al2","name":"Dawn"}]}`))
			case "/api/album/list/al1":
				_, _ = w.Write([]byte(`{"data":{"id":"al1","name":"Dusk","songs":[{"id":"3","name":"C"},{"id":"1","name":"A"}]}}`))
			case "/api/playlist/list":
				_, _ = w.Write([]byte(`{"data":[{"id":"p1","title":"Focus","songs":[{"id":"2","name":"B"}]}]}`))
			case "/api/playlist/list/p1":
				_, _ = w.Write([]byte(`{"data":{"id":"p1","title":"Focus","songs":[{"id":"2","name":"B"},{"id":"1","name":"A"}]}}`))
			case "/api/user/like/song/list":
				_, _ = w.Write([]byte(`{"data":[{"id":"1","name":"A"}]}`))
			case "/api/stream/recent":
				_, _ = w.Write([]byte(`{"data":[{"id":"2","name":"B"}]}`))
			case "/api/auth/login":
				_, _ = w.Write([]byte(`{"token":"jwt","username":"ana","userId":"u1","role":"user"}`))
			default:
				_, _ = w.Write([]byte(`{"success":true}`))
			}
		})
		defer srv.Close()

		client := New(srv.URL+"/", func() (string, error) { return "jwt", nil }).WithHTTPClient(srv.Client())

		Convey("FetchTracks decodes the song list", func() {
			tracks, err := client.FetchTracks(ctx)
			So(err, ShouldBeNil)
			So(len(tracks), ShouldEqual, 2)
			So(tracks[0].Audio, ShouldEqual, "https://cdn/a.mp3")
			So(tracks[0].Duration.Float(), ShouldEqual, 10)
			So(tracks[1].Duration.Float(), ShouldEqual, 20)

			call := (*calls)[0]
			So(call.method, ShouldEqual, http.MethodGet)
			So(call.auth, ShouldBeEmpty)
			_, err = uuid.Parse(call.requestID)
			So(err, ShouldBeNil)
		})

		Convey("IncrementPlay posts to the track's increment route", func() {
			So(client.IncrementPlay(ctx, "a b"), ShouldBeNil)
			So((*calls)[0].method, ShouldEqual, http.MethodPost)
			So((*calls)[0].path, ShouldEqual, "/api/song/increment/a b")
		})

		Convey("RecordStream is authenticated and names the song", func() {
			So(client.RecordStream(ctx, "2"), ShouldBeNil)
			call := (*calls)[0]
			So(call.auth, ShouldEqual, "Bearer jwt")
			So(call.body["songId"], ShouldEqual, "2")
		})

		Convey("Recent returns tracks", func() {
			tracks, err := client.Recent(ctx)
			So(err, ShouldBeNil)
			So(tracks[0].ID, ShouldEqual, "2")
		})

		Convey("Albums are public and labelled by name", func() {
			albums, err := client.Albums(ctx)
			So(err, ShouldBeNil)
			So(len(albums), ShouldEqual, 2)
			So(albums[1].Label(), ShouldEqual, "Dawn")
			So((*calls)[0].auth, ShouldBeEmpty)
		})

		Convey("Album keeps its song order", func() {
			album, err := client.Album(ctx, "al1")
			So(err, ShouldBeNil)
			So(album.Label(), ShouldEqual, "Dusk")
			So(album.Songs[0].ID, ShouldEqual, "3")
			So(album.Songs[1].ID, ShouldEqual, "1")
		})

		Convey("Playlists are authenticated and labelled by title", func() {
			lists, err := client.Playlists(ctx)
			So(err, ShouldBeNil)
			So(lists[0].Label(), ShouldEqual, "Focus")
			So((*calls)[0].auth, ShouldEqual, "Bearer jwt")

			list, err := client.Playlist(ctx, "p1")
			So(err, ShouldBeNil)
			So(len(list.Songs), ShouldEqual, 2)
			So((*calls)[1].path, ShouldEqual, "/api/playlist/list/p1")
			So((*calls)[1].auth, ShouldEqual, "Bearer jwt")
		})

		Convey("LikedSongs is authenticated", func() {
			liked, err := client.LikedSongs(ctx)
			So(err, ShouldBeNil)
			So(liked[0].ID, ShouldEqual, "1")
			So((*calls)[0].auth, ShouldEqual, "Bearer jwt")
		})

		Convey("Login returns the session", func() {
			s, err := client.Login(ctx, "ana@example.com", "pw")
			So(err, ShouldBeNil)
			So(s.Token, ShouldEqual, "jwt")
			So(s.Username, ShouldEqual, "ana")
			So((*calls)[0].body["email"], ShouldEqual, "ana@example.com")
		})
	})

	Convey("Given a backend that rejects requests", t, func() {
		srv, _ := newServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid token"}`))
		})
		defer srv.Close()

		client := New(srv.URL, func() (string, error) { return "stale", nil }).WithHTTPClient(srv.Client())

		Convey("The backend's message is surfaced", func() {
			err := client.RecordStream(ctx, "1")
			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusUnauthorized)
			So(apiErr.Message, ShouldEqual, "Invalid token")
		})
	})

	Convey("Authenticated calls without a token fail before any request", t, func() {
		srv, calls := newServer(func(w http.ResponseWriter, r *http.Request) {})
		defer srv.Close()

		client := New(srv.URL, func() (string, error) { return "", errors.New("no session") }).WithHTTPClient(srv.Client())
		So(client.RecordStream(ctx, "1"), ShouldNotBeNil)
		_, err := client.Playlist(ctx, "p1")
		So(err, ShouldNotBeNil)
		So(len(*calls), ShouldEqual, 0)
	})
}
