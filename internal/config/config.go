package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWebAddr       = "127.0.0.1:3345"
	DefaultLogLevel      = "info"
	DefaultAutosaveDelay = 500 * time.Millisecond
	DefaultStatsInterval = 2 * time.Second
	DefaultDatastarURL   = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
)

// Config is the merged configuration: defaults, then config.yaml, then environment variables.
// Command-line flags are applied on top by the CLI.
type Config struct {
	DataDir  string       `yaml:"data_dir"`
	Web      WebConfig    `yaml:"web"`
	Log      LogConfig    `yaml:"log"`
	Autosave AutosaveConf `yaml:"autosave"`
	Stats    StatsConfig  `yaml:"stats"`
}

type WebConfig struct {
	Addr        string `yaml:"addr"`
	DatastarURL string `yaml:"datastar_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AutosaveConf struct {
	Delay time.Duration `yaml:"delay"`
}

type StatsConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Dir is the configuration directory, ~/.bycore unless BYCORE_CONFIG_DIR is set.
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.bycore).
	if v := strings.TrimSpace(os.Getenv("BYCORE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".bycore"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Defaults(dir string) Config {
	return Config{
		DataDir:  filepath.Join(dir, "data"),
		Web:      WebConfig{Addr: DefaultWebAddr, DatastarURL: DefaultDatastarURL},
		Log:      LogConfig{Level: DefaultLogLevel},
		Autosave: AutosaveConf{Delay: DefaultAutosaveDelay},
		Stats:    StatsConfig{Interval: DefaultStatsInterval},
	}
}

// Load reads the optional config file and applies environment overrides.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	cfg := Defaults(dir)

	path := filepath.Join(dir, "config.yaml")
	if err := loadFromFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	if v := os.Getenv("BYCORE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BYCORE_WEB_ADDR"); v != "" {
		cfg.Web.Addr = v
	}
	if v := os.Getenv("BYCORE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BYCORE_AUTOSAVE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BYCORE_AUTOSAVE_DELAY: %w", err)
		}
		cfg.Autosave.Delay = d
	}

	if cfg.Autosave.Delay <= 0 {
		cfg.Autosave.Delay = DefaultAutosaveDelay
	}
	if cfg.Stats.Interval <= 0 {
		cfg.Stats.Interval = DefaultStatsInterval
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
