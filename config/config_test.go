package config

import (
	"os"
	"testing"

	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetFloat64(key.PlayerVolume), ShouldEqual, 1.0)
			So(viper.GetString(key.PlayerBackend), ShouldEqual, "mpv")
		})

		Convey("Environment variables override defaults", func() {
			So(os.Setenv("MELODY_PLAYER_SEEK_STEP", "10"), ShouldBeNil)
			defer os.Unsetenv("MELODY_PLAYER_SEEK_STEP")

			_ = Setup()
			So(viper.GetInt(key.PlayerSeekStep), ShouldEqual, 10)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("history.save_on_play"), ShouldEqual, "history_save_on_play")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given the registered fields", t, func() {
		Convey("Env names carry the application prefix", func() {
			f := Default[key.BackendURL]
			So(f.Env(), ShouldEqual, "MELODY_BACKEND_URL")
		})

		Convey("TypeName reflects the default value", func() {
			So(lookup(key.PlayerVolume).TypeName(), ShouldEqual, "float")
			So(lookup(key.PlayerSeekStep).TypeName(), ShouldEqual, "int")
			So(lookup(key.LogsWrite).TypeName(), ShouldEqual, "bool")
			So(lookup(key.IconsVariant).TypeName(), ShouldEqual, "string")
		})

		Convey("Parse converts raw input to the field type", func() {
			v, err := lookup(key.PlayerVolume).Parse([]string{"0.5"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.5)

			v, err = lookup(key.HistoryReport).Parse([]string{"false"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)

			_, err = lookup(key.PlayerSeekStep).Parse([]string{"five"})
			So(err, ShouldNotBeNil)

			_, err = lookup(key.PlayerSeekStep).Parse(nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func lookup(k string) *Field {
	f := Default[k]
	return &f
}
