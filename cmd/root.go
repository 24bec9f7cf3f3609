// Package cmd implements the command-line interface for melody.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/melody-cli/melody/color"
	"github.com/melody-cli/melody/constant"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/key"
	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/media"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/tui"
	"github.com/melody-cli/melody/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the icon variant (emoji, nerd, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("engine", "e", "", "Media engine to play through (mpv, beep)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("engine", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return media.Backends(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.PlayerBackend, rootCmd.PersistentFlags().Lookup("engine")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Mirror played tracks into the local history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnPlay, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.Flags().BoolP("autoplay", "a", false, "Start playing the first track as soon as the catalog loads")
	lo.Must0(viper.BindPFlag(key.PlayerAutoplay, rootCmd.Flags().Lookup("autoplay")))

	// sockets left behind by crashed runs; live ones are younger
	go sweepTemp(24 * time.Hour)
}

// rootCmd opens the interactive player.
var rootCmd = &cobra.Command{
	Use:   constant.Melody,
	Short: "Stream music from the terminal",
	Long: constant.Banner + "\n" +
		style.New().Italic(true).Foreground(color.Green).Render("    - Stream music from the terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		bridge := tui.NewBridge()
		p, err := newPlayer(playerOptions{
			Notifier:   bridge,
			OnChange:   bridge.Changed,
			OnRecorded: bridge.Recorded,
		})
		handleErr(err)
		defer util.Ignore(p.Close)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := p.controller.Run(ctx); err != nil && err != context.Canceled {
				log.Error(err)
			}
		}()

		handleErr(tui.Run(&tui.Options{
			Controller: p.controller,
			Catalog:    p.catalog,
			Bridge:     bridge,
			Invalidate: p.fetcher.Invalidate,
		}))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiGreen + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
