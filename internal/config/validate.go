package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/farooq-001/watchdog/internal/compress"
)

// validate parses and checks a raw Config, returning the Resolved form.
func validate(cfg *Config) (*Resolved, error) {
	if len(cfg.Watch.Roots) == 0 {
		return nil, fmt.Errorf("watch.roots must name at least one candidate path")
	}

	for _, root := range cfg.Watch.Roots {
		if !filepath.IsAbs(root) {
			return nil, fmt.Errorf("watch root %q is not an absolute path", root)
		}
	}

	if !filepath.IsAbs(cfg.Log.File) {
		return nil, fmt.Errorf("log.file %q is not an absolute path", cfg.Log.File)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("log.level %q is invalid (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "auto", "text", "json":
	default:
		return nil, fmt.Errorf("log.format %q is invalid (must be auto, text, or json)", cfg.Log.Format)
	}

	interval, err := time.ParseDuration(cfg.Rotation.Interval)
	if err != nil {
		return nil, fmt.Errorf("rotation.interval %q: %w", cfg.Rotation.Interval, err)
	}

	if interval <= 0 {
		return nil, fmt.Errorf("rotation.interval must be positive, got %s", interval)
	}

	retention, err := time.ParseDuration(cfg.Rotation.Retention)
	if err != nil {
		return nil, fmt.Errorf("rotation.retention %q: %w", cfg.Rotation.Retention, err)
	}

	if retention <= 0 {
		return nil, fmt.Errorf("rotation.retention must be positive, got %s", retention)
	}

	if _, err := compress.ParseLevel(cfg.Rotation.Compression); err != nil {
		return nil, fmt.Errorf("rotation.compression: %w", err)
	}

	return &Resolved{
		Roots:       cfg.Watch.Roots,
		LogFile:     cfg.Log.File,
		LogLevel:    cfg.Log.Level,
		LogFormat:   cfg.Log.Format,
		Interval:    interval,
		Retention:   retention,
		Compression: cfg.Rotation.Compression,
	}, nil
}
