// Package config loads port-patrol configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (PORT_PATROL_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .port-patrol.yaml in current directory
//  2. ~/.config/port-patrol/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all port-patrol configuration.
type Config struct {
	// Session is the tmux session to monitor.
	Session string `yaml:"session"`

	// Poll and probe timing (Go duration strings, e.g. "200ms")
	Interval     string `yaml:"interval"`
	ProbeTimeout string `yaml:"probe_timeout"`

	// CaptureLines is how much scrollback to capture per pane per cycle.
	CaptureLines int `yaml:"capture_lines"`

	// Grace periods before an unreachable port is declared closed.
	Grace           string `yaml:"grace"`
	GraceOptimistic string `yaml:"grace_optimistic"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	IntervalDuration        time.Duration `yaml:"-"`
	ProbeTimeoutDuration    time.Duration `yaml:"-"`
	GraceDuration           time.Duration `yaml:"-"`
	GraceOptimisticDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Session:         "kisuke-terminal",
		Interval:        "200ms",
		ProbeTimeout:    "1s",
		CaptureLines:    500,
		Grace:           "10s",
		GraceOptimistic: "30s",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Try to load config file
	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	var err error
	cfg.IntervalDuration, err = time.ParseDuration(cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid interval %q: %w", cfg.Interval, err)
	}
	cfg.ProbeTimeoutDuration, err = time.ParseDuration(cfg.ProbeTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid probe timeout %q: %w", cfg.ProbeTimeout, err)
	}
	cfg.GraceDuration, err = time.ParseDuration(cfg.Grace)
	if err != nil {
		return nil, fmt.Errorf("invalid grace %q: %w", cfg.Grace, err)
	}
	cfg.GraceOptimisticDuration, err = time.ParseDuration(cfg.GraceOptimistic)
	if err != nil {
		return nil, fmt.Errorf("invalid optimistic grace %q: %w", cfg.GraceOptimistic, err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".port-patrol.yaml"); err == nil {
		return ".port-patrol.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "port-patrol", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Session != "" {
		cfg.Session = file.Session
	}
	if file.Interval != "" {
		cfg.Interval = file.Interval
	}
	if file.ProbeTimeout != "" {
		cfg.ProbeTimeout = file.ProbeTimeout
	}
	if file.CaptureLines > 0 {
		cfg.CaptureLines = file.CaptureLines
	}
	if file.Grace != "" {
		cfg.Grace = file.Grace
	}
	if file.GraceOptimistic != "" {
		cfg.GraceOptimistic = file.GraceOptimistic
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("PORT_PATROL_SESSION"); v != "" {
		cfg.Session = v
	} else if v := os.Getenv("KISUKE_TMUX_SESSION"); v != "" {
		// Legacy name used by the original iOS client.
		cfg.Session = v
	}
	if v := os.Getenv("PORT_PATROL_INTERVAL"); v != "" {
		cfg.Interval = v
	}
	if v := os.Getenv("PORT_PATROL_PROBE_TIMEOUT"); v != "" {
		cfg.ProbeTimeout = v
	}
	if v := os.Getenv("PORT_PATROL_GRACE"); v != "" {
		cfg.Grace = v
	}
	if v := os.Getenv("PORT_PATROL_GRACE_OPTIMISTIC"); v != "" {
		cfg.GraceOptimistic = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}
