package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/melody-cli/melody/auth"
	"github.com/melody-cli/melody/color"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)

	authLoginCmd.Flags().StringP("email", "m", "", "Account email")
}

// authCmd groups the session commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the streaming account session",
	Long: `Sign in to record plays in your listening history.
Playback works without an account.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		email := lo.Must(cmd.Flags().GetString("email"))
		if email == "" {
			handleErr(survey.AskOne(&survey.Input{Message: "Email:"}, &email, survey.WithValidator(survey.Required)))
		}

		var password string
		handleErr(survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		session, err := newClient().Login(ctx, email, password)
		handleErr(err)

		user := lo.Ternary(session.Username != "", session.Username, email)
		handleErr(auth.SetToken(user, session.Token))

		fmt.Printf("%s signed in as %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(user))
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s signed out\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is stored",
	Run: func(cmd *cobra.Command, args []string) {
		if !auth.SignedIn() {
			fmt.Println(style.Faint("not signed in"))
			return
		}

		// the account name is informational, the token is what matters
		user, _ := auth.User()
		fmt.Printf("signed in as %s\n", style.Fg(color.Purple)(lo.Ternary(user != "", user, "unknown user")))
	},
}
