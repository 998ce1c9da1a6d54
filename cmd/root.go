package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vectome/vectome/internal/config"
	"github.com/vectome/vectome/internal/landmarks"
	"github.com/vectome/vectome/internal/source"
)

var (
	flagConfig    string
	flagCache     string
	flagLandmarks string
)

var rootCmd = &cobra.Command{
	Use:           "vectome",
	Short:         "Turn genome sketches into fixed-length vectors",
	SilenceUsage:  true, // don't print usage on operational errors
	SilenceErrors: true,
	Long: `vectome resolves species, strain and taxon identifiers to MinHash sketches
and converts each sketch into a numeric vector, either by CountSketch folding
or by Jaccard distances to a cached group of landmark genomes.

Vectors are written to stdout as TSV; progress and errors go to stderr.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default $VECTOME_CONFIG or <user config dir>/vectome/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagCache, "cache", "", "Cache root, overrides cache_dir and VECTOME_CACHE")
	rootCmd.PersistentFlags().StringVar(&flagLandmarks, "landmarks", "", "Landmark catalog YAML (default: built-in catalog)")
}

// Execute is called by main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printErr("", err.Error())
		for _, h := range strings.Split(errors.FlattenHints(err), "\n") {
			if h = strings.TrimSpace(h); h != "" {
				printInfo("hint", h)
			}
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	if flagCache != "" {
		if cfg.CacheDir, err = config.ExpandPath(flagCache); err != nil {
			return nil, err
		}
	}
	if flagLandmarks != "" {
		if cfg.LandmarksFile, err = config.ExpandPath(flagLandmarks); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func openSource(cfg *config.Config) (source.Source, error) {
	src, err := source.NewFromConfig(&source.Config{
		Type:    cfg.Source.Type,
		Dir:     cfg.Source.Dir,
		BaseURL: cfg.Source.BaseURL,
		KSize:   cfg.Source.KSize,
		Retries: cfg.Source.Retries,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open sketch source: %w", err)
	}
	return src, nil
}

// openStore returns the landmark store for cfg. src may be nil for commands
// that never build.
func openStore(cfg *config.Config, src source.Source) (*landmarks.Store, error) {
	cat, err := landmarks.LoadCatalog(cfg.LandmarksFile)
	if err != nil {
		return nil, fmt.Errorf("cannot load landmark catalog: %w", err)
	}
	st, err := landmarks.NewStore(cfg.CacheDir, cat, src)
	if err != nil {
		return nil, err
	}
	st.LockTimeout = cfg.LockTimeout
	st.ResolveTimeout = cfg.Timeout
	return st, nil
}
