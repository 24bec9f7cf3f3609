package session

import (
	"testing"

	"github.com/melody-cli/melody/queue"
	"github.com/melody-cli/melody/track"
	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		s := New(1)

		Convey("Nothing is current or playing", func() {
			So(s.Current().IsPresent(), ShouldBeFalse)
			So(s.CurrentID(), ShouldEqual, "")
			So(s.Playing(), ShouldBeFalse)
			So(s.Mode(), ShouldEqual, ModeSequential)
			So(s.Volume(), ShouldEqual, 1.0)
		})

		Convey("Loop and shuffle exclude each other", func() {
			s.ToggleLoop()
			s.ToggleShuffle()
			So(s.Mode().Looping(), ShouldBeFalse)
			So(s.Mode().Shuffling(), ShouldBeTrue)

			s.ToggleLoop()
			So(s.Mode().Shuffling(), ShouldBeFalse)
			So(s.Mode().Looping(), ShouldBeTrue)
		})

		Convey("Turning a mode off leaves the other off", func() {
			s.ToggleShuffle()
			So(s.ToggleShuffle(), ShouldEqual, ModeSequential)
			So(s.Mode().Looping(), ShouldBeFalse)
		})

		Convey("Volume clamps and is idempotent", func() {
			So(s.SetVolume(1.5), ShouldEqual, 1.0)
			So(s.SetVolume(1.5), ShouldEqual, 1.0)
			So(s.SetVolume(-0.2), ShouldEqual, 0.0)
			So(s.SetVolume(0.35), ShouldEqual, 0.35)
		})

		Convey("Mute keeps the stored volume", func() {
			s.SetVolume(0.7)
			So(s.ToggleMute(), ShouldBeTrue)
			So(s.Volume(), ShouldEqual, 0.7)
			So(s.EffectiveVolume(), ShouldEqual, 0.0)

			So(s.ToggleMute(), ShouldBeFalse)
			So(s.EffectiveVolume(), ShouldEqual, 0.7)
		})

		Convey("Setting a track resets progress to its catalog duration", func() {
			s.SetProgress(50, 100)
			s.SetCurrent(track.Track{ID: "2", Duration: 20})
			So(s.CurrentID(), ShouldEqual, "2")
			So(s.Position(), ShouldEqual, 0)
			So(s.Duration(), ShouldEqual, 20)
		})

		Convey("Position never exceeds a known duration", func() {
			s.SetCurrent(track.Track{ID: "1", Duration: 10})
			s.SetProgress(12, 10)
			So(s.Position(), ShouldEqual, 10)
			s.SetPosition(-4)
			So(s.Position(), ShouldEqual, 0)
		})

		Convey("Unknown durations leave position unclamped above zero", func() {
			s.SetCurrent(track.Track{ID: "1"})
			s.SetProgress(42, 0)
			So(s.Position(), ShouldEqual, 42)
			So(s.Duration(), ShouldEqual, 0)
		})

		Convey("The queue is copied on the way in and out", func() {
			q := queue.Of("1", "2")
			s.SetQueue(q)
			q[0] = "x"
			So(s.Queue(), ShouldResemble, queue.Of("1", "2"))

			snap := s.Snapshot()
			snap.Queue[1] = "y"
			So(s.Queue(), ShouldResemble, queue.Of("1", "2"))
		})

		Convey("Clear drops the current track", func() {
			s.SetCurrent(track.Track{ID: "1"})
			s.SetPlaying(true)
			s.Clear()
			So(s.Current().IsPresent(), ShouldBeFalse)
			So(s.Playing(), ShouldBeFalse)
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Given a snapshot mid-track", t, func() {
		s := New(0.5)
		s.SetCurrent(track.Track{ID: "b", Duration: 200})
		s.SetQueue(queue.Of("a", "b", "c"))
		s.SetProgress(65.4, 200)
		snap := s.Snapshot()

		Convey("Derived values follow the position", func() {
			So(snap.Percent(), ShouldEqual, 32)
			So(snap.Ratio(), ShouldAlmostEqual, 0.327, 0.001)
			So(snap.Elapsed().String(), ShouldEqual, "1:05")
			So(snap.Total().String(), ShouldEqual, "3:20")
			So(snap.QueueIndex(), ShouldEqual, 1)
		})

		Convey("A snapshot does not follow later mutations", func() {
			s.SetVolume(0.9)
			s.ToggleLoop()
			So(snap.Volume, ShouldEqual, 0.5)
			So(snap.Looping(), ShouldBeFalse)
		})
	})

	Convey("An empty snapshot has no fill", t, func() {
		snap := New(1).Snapshot()
		So(snap.Percent(), ShouldEqual, 0)
		So(snap.Ratio(), ShouldEqual, 0)
		So(snap.QueueIndex(), ShouldEqual, -1)
	})
}
