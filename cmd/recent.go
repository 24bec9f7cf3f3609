package cmd

import (
	"context"
	"time"

	"github.com/melody-cli/melody/auth"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recentCmd)
}

// recentCmd shows the listening history kept by the backend for the signed-in account.
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently played tracks of your account",
	Run: func(cmd *cobra.Command, args []string) {
		if !auth.SignedIn() {
			handleErr(errSignedOut)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tracks, err := newClient().Recent(ctx)
		handleErr(err)
		printTracks(cmd, tracks)
	},
}
