// Package config resolves tally configuration from files, the environment and flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "tally"

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

// DefaultDataDir returns $XDG_DATA_HOME/tally, falling back to ~/.local/share/tally.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", "~/.local/share")
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/tally, falling back to ~/.config/tally.
func DefaultConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", "~/.config")
}

// SheetsTokenFile is where the Google Sheets OAuth2 token is cached.
func SheetsTokenFile() string {
	return filepath.Join(DefaultConfigDir(), "sheets-token.json")
}

func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" {
		base = ExpandPath(fallback)
	}
	return filepath.Join(base, appDir)
}
