package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file and returns the resulting Config.
// Unknown keys are fatal — silently ignoring a typo in a config file leads
// to hard-to-debug behavior in a daemon nobody is watching.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values. Supports running with no config
// file at all.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve applies the full override chain — defaults -> config file ->
// environment -> CLI flags — and returns a validated, fully-parsed Resolved.
// CLI flags always win; users expect one-off overrides without editing the
// config file.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	if len(env.Roots) > 0 {
		cfg.Watch.Roots = env.Roots
	}

	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}

	if cli.LogFile != "" {
		cfg.Log.File = cli.LogFile
	}

	if cli.Interval != "" {
		cfg.Rotation.Interval = cli.Interval
	}

	if cli.Retention != "" {
		cfg.Rotation.Retention = cli.Retention
	}

	resolved, err := validate(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return resolved, nil
}
