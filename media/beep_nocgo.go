//go:build !((linux && cgo) || windows || darwin)

package media

import "fmt"

// NewBeep is unavailable without cgo on this platform.
func NewBeep() (Resource, error) {
	return nil, fmt.Errorf("beep backend: %w: audio output is not supported in this build, use mpv", ErrTransport)
}
