package style

import "github.com/charmbracelet/lipgloss"

// Player palette.
var (
	Base    = lipgloss.Color("#121212")
	Text    = lipgloss.Color("#e8e8e8")
	Overlay = lipgloss.Color("#6a6a6a")

	Green  = lipgloss.Color("#1db954")
	Red    = lipgloss.Color("#f38ba8")
	Yellow = lipgloss.Color("#f9e2af")
	Blue   = lipgloss.Color("#89b4fa")

	AccentColor  = Green
	WarningColor = Yellow
	ErrorColor   = Red
	FaintColor   = Overlay
)
