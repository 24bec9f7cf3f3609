// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Streaming Backend - these keys locate the remote catalog and reporting API.
const (
	BackendURL = "backend.url"
)

// Media Playback - these keys configure the shared media resource and transport behaviour.
const (
	PlayerBackend    = "player.backend"
	PlayerVolume     = "player.volume"
	PlayerSeekStep   = "player.seek_step"
	PlayerVolumeStep = "player.volume_step"
	PlayerAutoplay   = "player.autoplay"
)

// History Tracking - these keys configure play reporting and the local play history.
const (
	HistorySaveOnPlay = "history.save_on_play"
	HistoryReport     = "history.report"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI) - these keys define the player view.
const (
	TUIShowDescription = "tui.show_description"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
