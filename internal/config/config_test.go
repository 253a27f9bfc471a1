package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Run.Source != nil || cfg.Run.RateHz != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[run]\nsource = \"wave\"\nrate = 120\nnoise = 0.25\nrecord = true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Run.Source == nil || *cfg.Run.Source != "wave" {
		t.Fatalf("unexpected source: %v", cfg.Run.Source)
	}
	if cfg.Run.RateHz == nil || *cfg.Run.RateHz != 120 {
		t.Fatalf("unexpected rate: %v", cfg.Run.RateHz)
	}
	if cfg.Run.Noise == nil || *cfg.Run.Noise != 0.25 {
		t.Fatalf("unexpected noise: %v", cfg.Run.Noise)
	}
	if cfg.Run.Record == nil || !*cfg.Run.Record {
		t.Fatalf("unexpected record: %v", cfg.Run.Record)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[run]\nradius = 10.0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "run.radius") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "accball", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "accball", "accball.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
}
