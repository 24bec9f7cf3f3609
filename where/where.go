// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/melody-cli/melody/constant"
	"github.com/melody-cli/melody/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "MELODY_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the primary configuration directory.
// It can be overridden with the MELODY_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Melody))
}

// ConfigFile is the path of the TOML settings file.
func ConfigFile() string {
	return filepath.Join(Config(), constant.Melody+".toml")
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Melody))
}

// Logs resolves the directory for daily log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History is the local play history file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Catalog is the cached copy of the last fetched track list.
func Catalog() string {
	return filepath.Join(Cache(), "catalog.json")
}

// Temp resolves a directory for volatile artifacts such as IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Melody))
}
