package log

import (
	"testing"

	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/key"
	"github.com/melody-cli/melody/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)

		Convey("Setup succeeds and creates no file", func() {
			So(Setup(), ShouldBeNil)
			files := lo.Must(filesystem.API().ReadDir(where.Logs()))
			So(files, ShouldBeEmpty)
			Info("dropped")
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer viper.Set(key.LogsWrite, false)

		Convey("Setup opens a daily file that receives entries", func() {
			So(Setup(), ShouldBeNil)
			With(Fields{"track": "t1"}).Info("loading")

			files := lo.Must(filesystem.API().ReadDir(where.Logs()))
			So(len(files), ShouldEqual, 1)
			So(files[0].Size(), ShouldBeGreaterThan, 0)
		})
	})
}
