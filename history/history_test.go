package history

import (
	"testing"
	"time"

	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/track"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given an empty history", t, func() {
		So(Clear(), ShouldBeNil)

		clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		now = func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}
		defer func() { now = time.Now }()

		a := track.Track{ID: "1", Name: "Blinding Lights", Description: "The Weeknd", Duration: 200}
		b := track.Track{ID: "2", Name: "Levitating", Description: "Dua Lipa", Duration: 203}

		Convey("When a track is saved", func() {
			So(Save(a), ShouldBeNil)

			Convey("Then it is stored with one play", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved["1"].Name, ShouldEqual, a.Name)
				So(saved["1"].Plays, ShouldEqual, 1)
				So(saved["1"].Duration, ShouldEqual, 200)
			})

			Convey("And saving it again bumps the count", func() {
				So(Save(a), ShouldBeNil)
				saved, _ := Get()
				So(saved["1"].Plays, ShouldEqual, 2)
			})

			Convey("And Recent lists the latest play first", func() {
				So(Save(b), ShouldBeNil)
				entries, err := Recent()
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].TrackID, ShouldEqual, "2")
				So(entries[1].TrackID, ShouldEqual, "1")
			})

			Convey("And Remove forgets it", func() {
				So(Remove("1"), ShouldBeNil)
				saved, _ := Get()
				So(saved, ShouldBeEmpty)
			})
		})
	})
}
