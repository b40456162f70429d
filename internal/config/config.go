// Package config implements TOML configuration loading, validation, and the
// override chain for watchdog: defaults -> config file -> environment ->
// CLI flags. The resolver returns a fully-parsed Resolved value; the rest of
// the program never touches raw config strings.
package config

import "time"

// Config is the top-level structure parsed from the TOML config file.
// String durations are kept raw here and parsed during resolution so a
// config file round-trips byte-for-byte.
type Config struct {
	Watch    WatchConfig    `toml:"watch"`
	Log      LogConfig      `toml:"log"`
	Rotation RotationConfig `toml:"rotation"`
}

// WatchConfig names the candidate watch roots. Only roots that exist at
// startup are monitored; the rest are skipped silently.
type WatchConfig struct {
	Roots []string `toml:"roots"`
}

// LogConfig controls the live change log and the daemon's own diagnostics.
type LogConfig struct {
	File   string `toml:"file"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// RotationConfig controls the maintenance cycle: how often the live log is
// compressed away, how long archives are kept, and at what gzip level.
type RotationConfig struct {
	Interval    string `toml:"interval"`
	Retention   string `toml:"retention"`
	Compression string `toml:"compression"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Empty string means "not specified".
type CLIOverrides struct {
	ConfigPath string // --config flag
	LogFile    string // --log-file flag
	Interval   string // --interval flag
	Retention  string // --retention flag
}

// Resolved is the effective configuration after the full override chain,
// with durations parsed and defaults applied.
type Resolved struct {
	Roots       []string
	LogFile     string
	LogLevel    string
	LogFormat   string
	Interval    time.Duration
	Retention   time.Duration
	Compression string
}

// PIDPath returns the daemon PID file path, kept alongside the live log so
// a second config knob is unnecessary.
func (r *Resolved) PIDPath() string {
	return r.LogFile + ".pid"
}
