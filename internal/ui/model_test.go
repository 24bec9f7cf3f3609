package ui

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given an empty model", t, func() {
		m := &Model{}

		Convey("View leaves content alone", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})

		Convey("A toast is shown on the last line", func() {
			So(m.Update(Toast{Text: "hello"}), ShouldNotBeNil)
			out := m.View("a\nb")
			So(strings.HasPrefix(out, "a\nb  "), ShouldBeTrue)
			So(out, ShouldContainSubstring, "hello")

			Convey("And cleared by its own timer", func() {
				m.Update(ClearMsg{seq: 1})
				_, ok := m.Current()
				So(ok, ShouldBeFalse)
			})

			Convey("But not by the timer of an older toast", func() {
				m.Update(Toast{Level: Error, Text: "second"})
				m.Update(ClearMsg{seq: 1})
				t, ok := m.Current()
				So(ok, ShouldBeTrue)
				So(t.Text, ShouldEqual, "second")
			})
		})
	})
}
