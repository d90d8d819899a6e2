package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName        = "stolu"
	configFileName = "config.toml"
)

// dirKind selects one of the two application directories.
type dirKind struct {
	xdgVar   string   // Linux override variable
	fallback []string // path under $HOME when the variable is unset
}

var (
	configDirKind = dirKind{xdgVar: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	dataDirKind   = dirKind{xdgVar: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
)

// DefaultConfigDir holds config.toml and .env. Linux honors XDG_CONFIG_HOME;
// macOS uses ~/Library/Application Support/stolu.
func DefaultConfigDir() string {
	return appDir(runtime.GOOS, configDirKind)
}

// DefaultDataDir holds the persisted session token (file, SQLite, Badger).
// Linux honors XDG_DATA_HOME; macOS shares the config directory.
func DefaultDataDir() string {
	return appDir(runtime.GOOS, dataDirKind)
}

// DefaultConfigPath is used when neither STOLU_CONFIG nor --config is set.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}

func appDir(goos string, kind dirKind) string {
	if goos == "linux" {
		if base := os.Getenv(kind.xdgVar); base != "" {
			return filepath.Join(base, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	if goos == "darwin" {
		return filepath.Join(home, "Library", "Application Support", appName)
	}

	return filepath.Join(append(append([]string{home}, kind.fallback...), appName)...)
}
