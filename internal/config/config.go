package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source describes where identifiers are resolved to sketches.
type Source struct {
	// Type is "dir" (sourmash signature files) or "http" (signature service).
	Type    string `yaml:"type"`
	Dir     string `yaml:"dir,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Retries int    `yaml:"retries,omitempty"`
	// KSize selects one MinHash from multi-k signatures; 0 takes the first.
	KSize int `yaml:"ksize,omitempty"`
}

// Defaults are the embed parameters used when a flag is not given.
type Defaults struct {
	Method     string `yaml:"method"`
	Dim        int    `yaml:"dim"`
	Hashes     int    `yaml:"hashes"`
	Normalize  *bool  `yaml:"normalize,omitempty"`
	Projection int    `yaml:"projection,omitempty"`
	Seed       int64  `yaml:"seed"`
	Group      int    `yaml:"group"`
}

// Config is the in-memory representation of config.yaml.
type Config struct {
	CacheDir      string        `yaml:"cache_dir"`
	LandmarksFile string        `yaml:"landmarks_file,omitempty"`
	Workers       int           `yaml:"workers,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	LockTimeout   time.Duration `yaml:"lock_timeout,omitempty"`
	Source        Source        `yaml:"source"`
	Defaults      Defaults      `yaml:"defaults"`
}

// Dir returns the vectome config directory (<user config dir>/vectome).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, "vectome"), nil
}

// ConfigPath returns $VECTOME_CONFIG, or config.yaml inside Dir.
func ConfigPath() (string, error) {
	if p := os.Getenv("VECTOME_CONFIG"); p != "" {
		return ExpandPath(p)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultCacheDir returns <user cache dir>/vectome.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine cache directory: %w", err)
	}
	return filepath.Join(base, "vectome"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config used when no config file exists and the
// one written by vectome init.
func DefaultConfig() (*Config, error) {
	cache, err := DefaultCacheDir()
	if err != nil {
		return nil, err
	}
	normalize := true
	return &Config{
		CacheDir:    cache,
		Timeout:     2 * time.Minute,
		LockTimeout: 30 * time.Second,
		Source:      Source{Type: "dir", Retries: 2},
		Defaults: Defaults{
			Method:    "countsketch",
			Dim:       4096,
			Hashes:    3,
			Normalize: &normalize,
			Seed:      42,
			Group:     0,
		},
	}, nil
}

// Load reads the config file at path, or ConfigPath when path is empty.
// A missing file yields DefaultConfig. Environment overrides are applied
// last.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := applyConfigDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with VECTOME_* variables from the process
// environment or the dotenv file.
func applyEnv(cfg *Config) error {
	set := func(key string, dst *string) error {
		v, err := GetConfigValue(key)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = v
		}
		return nil
	}
	for key, dst := range map[string]*string{
		"VECTOME_CACHE":      &cfg.CacheDir,
		"VECTOME_SOURCE":     &cfg.Source.Type,
		"VECTOME_SOURCE_DIR": &cfg.Source.Dir,
		"VECTOME_SOURCE_URL": &cfg.Source.BaseURL,
	} {
		if err := set(key, dst); err != nil {
			return err
		}
	}

	w, err := GetConfigValue("VECTOME_WORKERS")
	if err != nil {
		return err
	}
	if w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("invalid VECTOME_WORKERS %q: %w", w, err)
		}
		cfg.Workers = n
	}
	return nil
}

// applyConfigDefaults fills zero values a partial config file left behind
// and expands ~ in paths.
func applyConfigDefaults(cfg *Config) error {
	def, err := DefaultConfig()
	if err != nil {
		return err
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = def.CacheDir
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = def.LockTimeout
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = def.Source.Type
	}
	if cfg.Defaults.Method == "" {
		cfg.Defaults.Method = def.Defaults.Method
	}
	if cfg.Defaults.Dim == 0 {
		cfg.Defaults.Dim = def.Defaults.Dim
	}
	if cfg.Defaults.Hashes == 0 {
		cfg.Defaults.Hashes = def.Defaults.Hashes
	}
	if cfg.Defaults.Normalize == nil {
		cfg.Defaults.Normalize = def.Defaults.Normalize
	}

	for _, p := range []*string{&cfg.CacheDir, &cfg.LandmarksFile, &cfg.Source.Dir} {
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
	}
	return nil
}

// Save marshals cfg and writes it to path, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
