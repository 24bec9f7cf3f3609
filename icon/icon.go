// Package icon renders UI symbols as emoji, nerd-font glyphs or plain ASCII, depending on icons.variant.
package icon

import (
	"github.com/melody-cli/melody/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns every supported icons.variant value.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Play Icon = iota
	Pause
	Next
	Previous
	Loop
	Shuffle
	Volume
	Mute
	Track
	Success
	Fail
	Info
	Warn
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Play:     {emoji: "▶️", nerd: "", plain: ">"},
	Pause:    {emoji: "⏸️", nerd: "", plain: "||"},
	Next:     {emoji: "⏭️", nerd: "", plain: ">>"},
	Previous: {emoji: "⏮️", nerd: "", plain: "<<"},
	Loop:     {emoji: "🔁", nerd: "", plain: "L"},
	Shuffle:  {emoji: "🔀", nerd: "", plain: "S"},
	Volume:   {emoji: "🔊", nerd: "", plain: "vol"},
	Mute:     {emoji: "🔇", nerd: "", plain: "mute"},
	Track:    {emoji: "🎵", nerd: "", plain: "~"},
	Success:  {emoji: "✅", nerd: "", plain: "+"},
	Fail:     {emoji: "💥", nerd: "", plain: "x"},
	Info:     {emoji: "ℹ️", nerd: "", plain: "i"},
	Warn:     {emoji: "⚠️", nerd: "", plain: "!"},
}

// Get returns the rendered symbol for i.
func Get(i Icon) string {
	return icons[i].get()
}
