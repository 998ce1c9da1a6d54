package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectome/vectome/internal/config"
)

var (
	flagInitSourceDir string
	flagInitSourceURL string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config, .env template and cache directory",
	Long: `Create <user config dir>/vectome/config.yaml (or $VECTOME_CONFIG) with the
default settings, a .env template listing the VECTOME_* overrides, and the
cache directory. Existing files are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitSourceDir, "source-dir", "", "Directory of sourmash signature files")
	initCmd.Flags().StringVar(&flagInitSourceURL, "source-url", "", "Base URL of a signature service (sets source.type to http)")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	cfgPath := flagConfig
	if cfgPath == "" {
		var err error
		if cfgPath, err = config.ConfigPath(); err != nil {
			return err
		}
	}

	// ── 1. Write config.yaml if missing ───────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if flagInitSourceDir != "" {
			cfg.Source.Dir = flagInitSourceDir
		}
		if flagInitSourceURL != "" {
			cfg.Source.Type = "http"
			cfg.Source.BaseURL = flagInitSourceURL
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 2. dotenv template ────────────────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	if p, err := config.DotEnvPath(); err == nil {
		printOK("", fmt.Sprintf(".env ready: %s", p))
	}

	// ── 3. Cache directory ────────────────────────────────────────────────────
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache directory %s: %w", cfg.CacheDir, err)
	}
	printOK("", fmt.Sprintf("Cache directory ready: %s", cfg.CacheDir))

	if cfg.Source.Type == "dir" && cfg.Source.Dir == "" {
		printWarn("", "source.dir is not set; edit the config or set VECTOME_SOURCE_DIR before 'vectome build'")
	}
	fmt.Fprintln(statusOut, "\nNext: vectome build 0, then vectome embed -m landmark ids.txt")
	return nil
}
