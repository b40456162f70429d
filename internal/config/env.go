package config

import (
	"os"
	"strings"
)

// Environment variable names for overrides.
const (
	EnvConfig  = "WATCHDOG_CONFIG"
	EnvLogFile = "WATCHDOG_LOG_FILE"
	EnvRoots   = "WATCHDOG_ROOTS"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string   // WATCHDOG_CONFIG: override config file path
	LogFile    string   // WATCHDOG_LOG_FILE: live log path override
	Roots      []string // WATCHDOG_ROOTS: colon-separated watch root override
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. Callers apply the relevant fields during resolution.
func ReadEnvOverrides() EnvOverrides {
	env := EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		LogFile:    os.Getenv(EnvLogFile),
	}

	if raw := os.Getenv(EnvRoots); raw != "" {
		for _, root := range strings.Split(raw, ":") {
			if root != "" {
				env.Roots = append(env.Roots, root)
			}
		}
	}

	return env
}
