package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// ConfigDir returns the XDG-compliant config directory for nbox
// Typically ~/.config/nbox/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "nbox")
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// CacheDir returns the XDG-compliant cache directory for nbox
// Typically ~/.cache/nbox/ on Linux (token cache lives here)
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "nbox")
}

// DataDir returns the XDG-compliant data directory for nbox
// Typically ~/.local/share/nbox/ on Linux (encrypted credential file fallback)
func DataDir() string {
	return filepath.Join(xdg.DataHome, "nbox")
}
