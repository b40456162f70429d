package config

// Default values for configuration options — layer 0 of the override chain.
// They mirror the classic deployment: watch the main system trees, log to
// /var/log, rotate hourly, keep a week of archives.
const (
	defaultLogFile     = "/var/log/file_changes.log"
	defaultLogLevel    = "info"
	defaultLogFormat   = "auto"
	defaultInterval    = "1h"
	defaultRetention   = "168h" // 7 days
	defaultCompression = "default"
)

// defaultRoots is the candidate watch list used when the config names none.
func defaultRoots() []string {
	return []string{"/home", "/etc", "/root", "/usr", "/opt"}
}

// DefaultConfig returns a Config populated with all default values. Used as
// the starting point for TOML decoding (unset fields keep their defaults)
// and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Watch: WatchConfig{
			Roots: defaultRoots(),
		},
		Log: LogConfig{
			File:   defaultLogFile,
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Rotation: RotationConfig{
			Interval:    defaultInterval,
			Retention:   defaultRetention,
			Compression: defaultCompression,
		},
	}
}
