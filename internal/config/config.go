// Package config manages the daemon configuration
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the daemon configuration
type Config struct {
	Listen  ListenConfig  `mapstructure:"listen"`
	Sidecar SidecarConfig `mapstructure:"sidecar"`
	Stats   StatsConfig   `mapstructure:"stats"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ListenConfig holds the HTTP listener addresses
type ListenConfig struct {
	// Addr serves the monitoring API and /metrics
	Addr string `mapstructure:"addr"`

	// HealthAddr serves the liveness/readiness probes
	HealthAddr string `mapstructure:"health_addr"`
}

// SidecarConfig holds sidecar supervision settings
type SidecarConfig struct {
	// Binary pins the full path to the sidecar executable; when set,
	// discovery is skipped entirely
	Binary string `mapstructure:"binary"`

	// BinaryName overrides the platform default executable name
	BinaryName string `mapstructure:"binary_name"`

	// DevDir is the development-tree binaries directory tried during
	// discovery
	DevDir string `mapstructure:"dev_dir"`

	// IntervalMillis is the reporting interval requested from the sidecar
	IntervalMillis int `mapstructure:"interval_millis"`
}

// StatsConfig holds baseline collector settings
type StatsConfig struct {
	// RefreshSeconds is the baseline collection cadence
	RefreshSeconds int `mapstructure:"refresh_seconds"`

	// TopProcesses bounds the top-by-CPU process listing
	TopProcesses int `mapstructure:"top_processes"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`

	// Development switches to the human-readable console encoder
	Development bool `mapstructure:"development"`
}

// Load loads configuration from an optional explicit file, the standard
// search paths, and HWMON_* environment overrides, with defaults for
// every key.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("hwmond")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.hwmond")
		v.AddConfigPath("/etc/hwmond")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HWMON")
	v.AutomaticEnv()

	v.SetDefault("listen.addr", ":8090")
	v.SetDefault("listen.health_addr", ":8091")
	v.SetDefault("sidecar.binary", "")
	v.SetDefault("sidecar.binary_name", "")
	v.SetDefault("sidecar.dev_dir", "")
	v.SetDefault("sidecar.interval_millis", 1000)
	v.SetDefault("stats.refresh_seconds", 1)
	v.SetDefault("stats.top_processes", 10)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	// A missing config file in the search paths is fine, everything has a
	// default; an explicitly named file that cannot be read is not.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
