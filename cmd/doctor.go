package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectome/vectome/internal/config"
	"github.com/vectome/vectome/internal/landmarks"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that vectome's configuration, sketch source and landmark cache are usable.
Every built group is fully loaded, so corrupt caches are reported with the
command that repairs them.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("vectome doctor")

	// ── Check 1: config file ──────────────────────────────────────────────────
	printBullet("config")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printMiss("", fmt.Sprintf("%s not found, using defaults (run 'vectome init' to create it)", cfgPath))
	} else {
		printOK("", cfgPath)
	}
	cfg, loadErr := loadConfig()
	if loadErr != nil {
		failD("%v", loadErr)
		return fmt.Errorf("doctor found issues")
	}

	// ── Check 2: sketch source ────────────────────────────────────────────────
	printBullet("sketch source")
	src, err := openSource(cfg)
	switch {
	case err != nil:
		failD("%v", err)
	case cfg.Source.Type == "dir" || cfg.Source.Type == "":
		if info, err := os.Stat(cfg.Source.Dir); err != nil || !info.IsDir() {
			failD("signature directory %s is not readable", cfg.Source.Dir)
		} else {
			printOK("", src.Name())
		}
	default:
		printOK("", src.Name())
	}

	// ── Check 3: landmark catalog and cache ───────────────────────────────────
	printBullet("landmark cache")
	st, err := openStore(cfg, nil)
	if err != nil {
		failD("%v", err)
		return fmt.Errorf("doctor found issues")
	}
	d, err := st.Describe()
	if err != nil {
		failD("cannot describe cache: %v", err)
		return fmt.Errorf("doctor found issues")
	}
	if d.CacheExists {
		printOK("", d.CacheLocation)
	} else {
		printMiss("", fmt.Sprintf("%s does not exist yet", d.CacheLocation))
	}

	for _, g := range d.Groups {
		switch s := g.Status.(type) {
		case landmarks.NotBuilt:
			printSkip(g.Name, fmt.Sprintf("not built (run 'vectome build %d')", g.ID))
		case landmarks.Corrupt:
			failD("[%s] corrupt: %s (run 'vectome build %d --force')", g.Name, s.Reason, g.ID)
		default:
			// Describe checks the manifest; Load also decodes every sketch.
			if _, err := st.Load(g.ID); err != nil {
				failD("[%s] %v", g.Name, err)
				continue
			}
			printOK(g.Name, fmt.Sprintf("%d landmarks load", g.Landmarks))
		}
	}

	// ── Summary ──────────────────────────────────────────────────────────────────
	fmt.Fprintln(statusOut, "\n===================")
	if !allOK {
		fmt.Fprintln(statusOut, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Fprintln(statusOut, "✓  All checks passed.")
	return nil
}
