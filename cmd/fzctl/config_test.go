package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "resynchronise: true\nlogs:\n  maxSizeMB: 5\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Resynchronise {
		t.Fatalf("resynchronise not read")
	}
	if cfg.Logs.MaxSizeMB != 5 {
		t.Fatalf("MaxSizeMB = %d, want 5", cfg.Logs.MaxSizeMB)
	}
	if cfg.Logs.MaxAgeDays != 7 || cfg.Logs.MaxBackups != 5 {
		t.Fatalf("defaults not applied: %+v", cfg.Logs)
	}
	if cfg.Logs.Directory == "" {
		t.Fatalf("log directory default not applied")
	}
}

func TestLoadConfigRelativeCamerasFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("camerasFile: cams.json\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if want := filepath.Join(dir, "cams.json"); cfg.CamerasFile != want {
		t.Fatalf("CamerasFile = %q, want %q", cfg.CamerasFile, want)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Resynchronise {
		t.Fatalf("resynchronise should default to off")
	}
	if cfg.Logs.MaxSizeMB != 25 {
		t.Fatalf("MaxSizeMB = %d, want 25", cfg.Logs.MaxSizeMB)
	}
}
