// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// Melody is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	Melody = "melody"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is the User-Agent header sent to the streaming backend.
	UserAgent = Melody + "/" + Version
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Banner is printed above the root command's long help.
const Banner = `                _           _
 _ __ ___   ___| | ___   __| |_   _
| '_ ' _ \ / _ \ |/ _ \ / _' | | | |
| | | | | |  __/ | (_) | (_| | |_| |
|_| |_| |_|\___|_|\___/ \__,_|\__, |
                              |___/`
