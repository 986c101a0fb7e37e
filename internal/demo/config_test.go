package demo

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want %v", cfg.TickInterval, time.Second)
	}
	if cfg.SessionPath != "session.json" {
		t.Errorf("SessionPath = %q, want %q", cfg.SessionPath, "session.json")
	}
	if cfg.Monitoring.Port != 6060 {
		t.Errorf("Monitoring.Port = %d, want 6060", cfg.Monitoring.Port)
	}
	if cfg.Monitoring.IsEnabled() {
		t.Error("Monitoring.IsEnabled() = true by default, want false")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("UILOOP_LOG_LEVEL", "debug")
	t.Setenv("UILOOP_MONITORING_PORT", "7777")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Monitoring.Port != 7777 {
		t.Errorf("Monitoring.Port = %d, want 7777", cfg.Monitoring.Port)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	body := []byte(`log_level: warn
tick_interval: 250ms
session_path: /tmp/demo-session.json
monitoring:
  port: 9999
  metrics_enabled: true
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v, want 250ms", cfg.TickInterval)
	}
	if cfg.SessionPath != "/tmp/demo-session.json" {
		t.Errorf("SessionPath = %q", cfg.SessionPath)
	}
	if cfg.Monitoring.Port != 9999 {
		t.Errorf("Monitoring.Port = %d, want 9999", cfg.Monitoring.Port)
	}
	if !cfg.Monitoring.IsEnabled() {
		t.Error("Monitoring.IsEnabled() = false, want true")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig() with a missing explicit file succeeded, want error")
	}
}

func TestMonitoringConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  MonitoringConfig
		want bool
	}{
		{"neither", MonitoringConfig{}, false},
		{"metrics", MonitoringConfig{MetricsEnabled: true}, true},
		{"profiling", MonitoringConfig{ProfilingEnabled: true}, true},
		{"both", MonitoringConfig{MetricsEnabled: true, ProfilingEnabled: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEnabled(); got != tt.want {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
