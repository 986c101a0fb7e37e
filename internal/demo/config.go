// Package demo wires the full stack into a small terminal
// application: a main loop owning a surface, a second loop hosting
// Lua, a monitoring server, and a session file.
package demo

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
)

// envPrefix is prepended to config keys for environment overrides,
// e.g. UILOOP_TICK_INTERVAL or UILOOP_MONITORING_PORT.
const envPrefix = "UILOOP"

// Config is the demo application configuration.
type Config struct {
	// LogLevel is a zerolog level name.
	LogLevel string `fig:"log_level" default:"info"`

	// LogFile, when set, receives the log stream instead of stderr,
	// which the UI owns while running.
	LogFile string `fig:"log_file"`

	// TickInterval paces the clock and stats redraws.
	TickInterval time.Duration `fig:"tick_interval" default:"1s"`

	// Script is a Lua file to run on the script loop. When set, the
	// app exits once the script completes.
	Script string `fig:"script"`

	// SessionPath locates the session file.
	SessionPath string `fig:"session_path" default:"session.json"`

	Monitoring MonitoringConfig `fig:"monitoring"`
}

// MonitoringConfig mirrors monitoring.ServerConfig in config-file
// form.
type MonitoringConfig struct {
	Port             int    `fig:"port" default:"6060"`
	URLPrefix        string `fig:"url_prefix"`
	MetricsEnabled   bool   `fig:"metrics_enabled"`
	ProfilingEnabled bool   `fig:"profiling_enabled"`
}

// IsEnabled reports whether the monitoring server should start.
func (c MonitoringConfig) IsEnabled() bool {
	return c.MetricsEnabled || c.ProfilingEnabled
}

// LoadConfig reads the configuration file at path and applies UILOOP_
// environment overrides. With an empty path only defaults and the
// environment apply.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	opts := []fig.Option{fig.UseEnv(envPrefix)}
	if path == "" {
		opts = append(opts, fig.IgnoreFile())
	} else {
		opts = append(opts,
			fig.File(filepath.Base(path)),
			fig.Dirs(filepath.Dir(path)),
		)
	}
	if err := fig.Load(&cfg, opts...); err != nil {
		return cfg, fmt.Errorf("demo: load config: %w", err)
	}
	return cfg, nil
}
