package media

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Given media targets from the backend", t, func() {
		Convey("http and https URLs pass through", func() {
			target, err := sanitizeMediaTarget("  https://cdn.example.com/a.mp3 ")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "https://cdn.example.com/a.mp3")
		})

		Convey("Local paths are cleaned", func() {
			target, err := sanitizeMediaTarget("music/../music/a.mp3")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "music/a.mp3")
		})

		Convey("Flag-looking targets are rejected", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Other schemes are rejected", func() {
			_, err := sanitizeMediaTarget("file:///etc/passwd")
			So(err, ShouldNotBeNil)
		})

		Convey("Control characters and empty targets are rejected", func() {
			_, err := sanitizeMediaTarget("a\nb")
			So(err, ShouldNotBeNil)
			_, err = sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMPVArgs(t *testing.T) {
	Convey("mpv runs headless and idle on the given socket", t, func() {
		args := mpvArgs("/tmp/melody-1.sock", 1, false)
		So(args, ShouldContain, "--input-ipc-server=/tmp/melody-1.sock")
		So(args, ShouldContain, "--idle=yes")
		So(args, ShouldContain, "--no-video")
		So(args, ShouldContain, "--keep-open=yes")
		So(sanitizeTitle("a\tb\x00\n"), ShouldEqual, "a b")
	})

	Convey("Output settings made before mpv starts are passed at spawn", t, func() {
		m := NewMPV()
		So(m.SetVolume(0.3), ShouldBeNil)
		So(m.SetMuted(true), ShouldBeNil)

		args := mpvArgs("/tmp/melody-1.sock", m.volume, m.muted)
		So(args, ShouldContain, "--volume=30")
		So(args, ShouldContain, "--mute=yes")
	})

	Convey("A fresh engine starts at full volume, unmuted", t, func() {
		m := NewMPV()
		args := mpvArgs("/tmp/melody-1.sock", m.volume, m.muted)
		So(args, ShouldContain, "--volume=100")
		So(args, ShouldContain, "--mute=no")
	})
}

func TestMPVEvents(t *testing.T) {
	Convey("Given an mpv engine with two loads on record", t, func() {
		m := NewMPV()
		m.source = "https://cdn/b.mp3"
		m.loaded = "https://cdn/a.mp3"
		m.entries[1] = "https://cdn/a.mp3"
		m.entries[2] = "https://cdn/b.mp3"

		next := func() Event {
			select {
			case ev := <-m.Events():
				return ev
			case <-time.After(2 * time.Second):
				return Event{Kind: -1}
			}
		}

		Convey("eof-reached ends the loaded URI", func() {
			m.handle("eof-reached", true)
			ev := next()
			So(ev.Kind, ShouldEqual, EventEnded)
			So(ev.Source, ShouldEqual, "https://cdn/a.mp3")
		})

		Convey("eof-reached turning false is not an event", func() {
			m.handle("eof-reached", false)
			So(len(m.Events()), ShouldEqual, 0)
		})

		Convey("end-file after a replace is not an event", func() {
			m.handle("end-file", map[string]interface{}{"reason": "stop", "playlist_entry_id": float64(1)})
			So(len(m.Events()), ShouldEqual, 0)
		})

		Convey("Load failures become transport errors", func() {
			m.handle("end-file", map[string]interface{}{"reason": "error", "playlist_entry_id": float64(2), "file_error": "loading failed"})
			ev := next()
			So(ev.Kind, ShouldEqual, EventError)
			So(ev.Source, ShouldEqual, "https://cdn/b.mp3")
			So(errors.Is(ev.Err, ErrTransport), ShouldBeTrue)
			So(strings.Contains(ev.Err.Error(), "loading failed"), ShouldBeTrue)
		})

		Convey("Progress ticks are tagged with the loaded URI", func() {
			m.handle("duration", 180.0)
			m.handle("time-pos", 12.5)
			ev := next()
			So(ev.Kind, ShouldEqual, EventTimeUpdate)
			So(ev.Source, ShouldEqual, "https://cdn/a.mp3")
			So(ev.Position, ShouldEqual, 12.5)
			So(ev.Duration, ShouldEqual, 180.0)
		})

		Convey("file-loaded falls back to the requested URI without a socket", func() {
			m.handle("file-loaded", map[string]interface{}{"event": "file-loaded"})
			ev := next()
			So(ev.Kind, ShouldEqual, EventCanPlay)
			So(ev.Source, ShouldEqual, "https://cdn/b.mp3")
			So(m.loaded, ShouldEqual, "https://cdn/b.mp3")
		})

		Convey("Controls before the first load do not reach mpv", func() {
			So(NewMPV().Pause(), ShouldBeNil)
			So(errors.Is(NewMPV().Play(), ErrTransport), ShouldBeTrue)
		})

		Reset(func() {
			So(m.Close(), ShouldBeNil)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Backends are chosen by name", t, func() {
		r, err := New("mpv")
		So(err, ShouldBeNil)
		So(r, ShouldHaveSameTypeAs, &MPV{})

		_, err = New("vlc")
		So(err, ShouldNotBeNil)
	})
}

func TestEventListener(t *testing.T) {
	Convey("Given raw mpv messages", t, func() {
		var names []string
		el := newEventListener("", func(name string, _ interface{}) { names = append(names, name) })

		el.processEvent([]byte(`{"event":"property-change","id":1,"name":"time-pos","data":3.2}`))
		el.processEvent([]byte(`{"event":"end-file","reason":"eof"}`))
		el.processEvent([]byte(`{"request_id":1,"error":"success"}`))
		el.processEvent([]byte(`not json`))

		So(names, ShouldResemble, []string{"time-pos", "end-file"})
	})
}
