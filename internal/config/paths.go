package config

import (
	"os"
	"path/filepath"
)

// systemConfigPath is the fallback when no user config directory resolves,
// e.g. when running as a system service without HOME set.
const systemConfigPath = "/etc/watchdog/config.toml"

// DefaultConfigPath returns the default config file location: the user
// config directory when one resolves, the system path otherwise.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return systemConfigPath
	}

	return filepath.Join(dir, "watchdog", "config.toml")
}
