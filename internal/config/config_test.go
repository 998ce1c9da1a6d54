package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cache, _ := DefaultCacheDir()
	if cfg.CacheDir != cache {
		t.Fatalf("cache dir = %q, want %q", cfg.CacheDir, cache)
	}
	if cfg.Defaults.Method != "countsketch" || cfg.Defaults.Dim != 4096 || cfg.Defaults.Seed != 42 {
		t.Fatalf("unexpected defaults: %+v", cfg.Defaults)
	}
	if cfg.Defaults.Normalize == nil || !*cfg.Defaults.Normalize {
		t.Fatalf("normalize should default to true")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	doc := "cache_dir: /data/vectome\ntimeout: 5s\ndefaults:\n  method: landmark\n  normalize: false\n  group: 1\nsource:\n  type: http\n  base_url: http://sketches.local\n"
	if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != "/data/vectome" || cfg.Timeout != 5*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LockTimeout != 30*time.Second || cfg.Defaults.Dim != 4096 {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
	if *cfg.Defaults.Normalize {
		t.Fatalf("explicit normalize: false was overwritten")
	}
	if cfg.Source.Type != "http" || cfg.Source.BaseURL != "http://sketches.local" {
		t.Fatalf("unexpected source: %+v", cfg.Source)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("VECTOME_CACHE", "/tmp/vc")
	t.Setenv("VECTOME_SOURCE_DIR", "/sigs")
	t.Setenv("VECTOME_WORKERS", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != "/tmp/vc" || cfg.Source.Dir != "/sigs" || cfg.Workers != 7 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	t.Setenv("VECTOME_WORKERS", "many")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-numeric VECTOME_WORKERS")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("defaults: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}

func TestSaveThenLoad(t *testing.T) {
	dir := isolate(t)
	t.Setenv("VECTOME_CONFIG", filepath.Join(dir, "nested", "config.yaml"))

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Source.Dir = "~/sigs"
	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	home, _ := os.UserHomeDir()
	if got.Source.Dir != filepath.Join(home, "sigs") {
		t.Fatalf("~ not expanded: %q", got.Source.Dir)
	}
	if got.Timeout != cfg.Timeout || got.Defaults.Hashes != 3 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}
