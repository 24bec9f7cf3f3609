package icon

import (
	"testing"

	"github.com/melody-cli/melody/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given the icon registry", t, func() {
		Convey("Every icon renders in every variant", func() {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			}
		})

		Convey("Plain variant is ASCII", func() {
			viper.Set(key.IconsVariant, plain)
			So(Get(Play), ShouldEqual, ">")
			So(Get(Pause), ShouldEqual, "||")
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Play), ShouldBeEmpty)
		})
	})
}
