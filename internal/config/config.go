package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string `yaml:"port"`
	DBPath          string `yaml:"db_path"`
	Workers         int    `yaml:"workers"`
	RefreshCron     string `yaml:"refresh_cron"`
	AlphaVantageKey string `yaml:"alpha_vantage_key"`
}

// Load reads config from a YAML file (missing file is fine), then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.RefreshCron = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantageKey = v
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "stockcurve.db"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.RefreshCron == "" {
		cfg.RefreshCron = "30 6 * * *"
	}

	return cfg, nil
}
