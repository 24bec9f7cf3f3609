package util

import (
	"math"
	"testing"

	"github.com/melody-cli/melody/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "track", "tracks"), ShouldEqual, "1 track")
		So(Quantify(2, "track", "tracks"), ShouldEqual, "2 tracks")
		So(Quantify(0, "track", "tracks"), ShouldEqual, "0 tracks")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestMaxMinClamp(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})

	Convey("Clamp", t, func() {
		So(Clamp(1.3, 0, 1), ShouldEqual, 1.0)
		So(Clamp(-0.2, 0, 1), ShouldEqual, 0.0)
		So(Clamp(0.4, 0, 1), ShouldEqual, 0.4)
	})
}

func TestDelete(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		So(fs.MkdirAll("/a/b", 0o755), ShouldBeNil)
		So(fs.WriteFile("/a/b/c.json", []byte("{}"), 0o644), ShouldBeNil)

		Convey("Delete removes files", func() {
			So(Delete("/a/b/c.json"), ShouldBeNil)
			exists, _ := fs.Exists("/a/b/c.json")
			So(exists, ShouldBeFalse)
		})

		Convey("Delete removes directories recursively", func() {
			So(Delete("/a"), ShouldBeNil)
			exists, _ := fs.Exists("/a/b")
			So(exists, ShouldBeFalse)
		})

		Convey("Delete fails on missing paths", func() {
			So(Delete("/missing"), ShouldNotBeNil)
		})
	})
}

func TestClock(t *testing.T) {
	Convey("Clock formatting", t, func() {
		Convey("Positions are floored into minutes and seconds", func() {
			So(ClockOf(125.9), ShouldResemble, Clock{Minute: 2, Second: 5})
			So(FormatClock(125.9), ShouldEqual, "2:05")
			So(FormatClock(0), ShouldEqual, "0:00")
			So(FormatClock(3600), ShouldEqual, "60:00")
		})

		Convey("Undefined positions render as zero", func() {
			So(FormatClock(math.NaN()), ShouldEqual, "0:00")
			So(FormatClock(-3), ShouldEqual, "0:00")
		})

		Convey("Totals switch to hours past sixty minutes", func() {
			So(FormatTotal(3725), ShouldEqual, "1 hr 2 min")
			So(FormatTotal(245), ShouldEqual, "4 min 5 sec")
		})

		Convey("Percent floors and treats unknown duration as zero", func() {
			So(Percent(30, 120), ShouldEqual, 25)
			So(Percent(59.9, 120), ShouldEqual, 49)
			So(Percent(10, 0), ShouldEqual, 0)
			So(Percent(10, math.NaN()), ShouldEqual, 0)
		})
	})
}
