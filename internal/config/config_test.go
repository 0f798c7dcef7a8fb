package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "stockcurve.db" || cfg.Workers != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"9999\"\nworkers: 3\nalpha_vantage_key: from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ALPHAVANTAGE_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port from file, got %s", cfg.Port)
	}
	if cfg.Workers != 3 {
		t.Errorf("expected workers from file, got %d", cfg.Workers)
	}
	if cfg.AlphaVantageKey != "from-env" {
		t.Errorf("expected env to win, got %s", cfg.AlphaVantageKey)
	}
}
