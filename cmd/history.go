package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/melody-cli/melody/color"
	"github.com/melody-cli/melody/history"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().StringP("remove", "r", "", "Forget one track")
	historyCmd.Flags().Bool("clear", false, "Forget every track")
	historyCmd.MarkFlagsMutuallyExclusive("remove", "clear", "json")
}

// historyCmd shows the local play history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show tracks played on this machine",
	Run: func(cmd *cobra.Command, args []string) {
		if id := lo.Must(cmd.Flags().GetString("remove")); id != "" {
			handleErr(history.Remove(id))
			fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(id))
			return
		}

		if lo.Must(cmd.Flags().GetBool("clear")) {
			handleErr(history.Clear())
			fmt.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		entries, err := history.Recent()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("nothing played yet"))
			return
		}

		for _, e := range entries {
			cmd.Printf(
				"%s  %s  %s\n",
				style.Bold(e.Name),
				style.Faint(util.Quantify(e.Plays, "play", "plays")),
				style.Fg(color.Gray)(humanize.Time(e.LastPlayed)),
			)
		}
	},
}
