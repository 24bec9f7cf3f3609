package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/melody-cli/melody/constant"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/key"
	"github.com/melody-cli/melody/style"
)

// CheckDependencies exits with install instructions when mpv is not in PATH.
func CheckDependencies() {
	if _, err := exec.LookPath("mpv"); err != nil {
		printMissingDependencyError("mpv")
		os.Exit(1)
	}
}

// mpvInstall maps runtime.GOOS to a package manager command.
var mpvInstall = map[string]string{
	"darwin":  "brew install mpv",
	"linux":   "sudo apt install mpv",
	"windows": "scoop install mpv",
}

func printMissingDependencyError(dep string) {
	installCmd := mpvInstall[runtime.GOOS]

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nInstall it with:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	alternative := style.Faint(fmt.Sprintf("\n\nOr use the built-in engine: %s config set %s beep", constant.Melody, key.PlayerBackend))

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
			alternative,
		),
	))
}
