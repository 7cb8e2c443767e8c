package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "hangulkey"

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/hangulkey/
//   - Linux:   $XDG_DATA_HOME/hangulkey/ or ~/.local/share/hangulkey/
//   - Windows: %APPDATA%\hangulkey\
func PlatformDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", appName)
	case "windows":
		return windowsDir("APPDATA", "AppData", "Roaming")
	default:
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
}

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/hangulkey/
//   - Linux:   $XDG_CONFIG_HOME/hangulkey/ or ~/.config/hangulkey/
//   - Windows: %APPDATA%\hangulkey\
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return PlatformDataDir()
	default:
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
}

// PlatformLogDir returns the platform-specific log directory.
func PlatformLogDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Logs", appName)
	case "windows":
		return filepath.Join(windowsDir("LOCALAPPDATA", "AppData", "Local"), "logs")
	default:
		return filepath.Join(xdgDir("XDG_STATE_HOME", ".local", "state"), "logs")
	}
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	parts := append([]string{homeDir()}, fallback...)
	return filepath.Join(append(parts, appName)...)
}

func windowsDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	parts := append([]string{homeDir()}, fallback...)
	return filepath.Join(append(parts, appName)...)
}

// SupportedConfigFormats returns the list of supported configuration file formats.
func SupportedConfigFormats() []string {
	return []string{".toml", ".json", ".yaml", ".yml"}
}

// FindConfigFile searches for a configuration file in dir, trying every
// supported extension. It returns "" when none exists.
func FindConfigFile(dir string) string {
	for _, ext := range SupportedConfigFormats() {
		path := filepath.Join(dir, "config"+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
