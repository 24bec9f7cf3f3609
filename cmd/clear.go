package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/util"
	"github.com/melody-cli/melody/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"catalog snapshot", "catalog", mo.Some("C"), where.Catalog},
	{"history file", "history", mo.Some("s"), where.History},
	{"temp directory", "temp", mo.None[string](), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes cached and recorded files.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached and recorded files",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			handleErr(filesystem.API().RemoveAll(target.location()))
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}

// sweepTemp deletes entries of the temp directory older than maxAge.
func sweepTemp(maxAge time.Duration) {
	dir := where.Temp()
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		log.Warnf("temp sweep: %v", err)
		return
	}

	for _, entry := range entries {
		if time.Since(entry.ModTime()) < maxAge {
			continue
		}
		if err := util.Delete(filepath.Join(dir, entry.Name())); err != nil {
			log.Warnf("temp sweep: %v", err)
		}
	}
}
