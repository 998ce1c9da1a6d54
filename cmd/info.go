package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vectome/vectome/internal/landmarks"
)

var flagInfoYAML bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the build status of every landmark group",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&flagInfoYAML, "yaml", false, "Print the description as YAML")
	rootCmd.AddCommand(infoCmd)
}

type infoGroup struct {
	Landmarks    int    `yaml:"landmarks"`
	ManifestFile string `yaml:"manifest_file"`
	Built        bool   `yaml:"built"`
	Status       string `yaml:"status"`
	Reason       string `yaml:"reason,omitempty"`
	BuildID      string `yaml:"build_id,omitempty"`
	CreatedAt    string `yaml:"created_at,omitempty"`
}

type infoMeta struct {
	CacheLocation string `yaml:"cache_location"`
	CacheExists   bool   `yaml:"cache_exists"`
}

type infoDoc struct {
	Groups map[string]infoGroup `yaml:"groups"`
	Meta   infoMeta             `yaml:"meta"`
}

func runInfo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg, nil)
	if err != nil {
		return err
	}
	d, err := st.Describe()
	if err != nil {
		return fmt.Errorf("cannot describe cache: %w", err)
	}

	if flagInfoYAML {
		return writeInfoYAML(cmd.OutOrStdout(), d)
	}
	writeInfoText(cmd.OutOrStdout(), d)
	return nil
}

func toInfoDoc(d *landmarks.Description) infoDoc {
	doc := infoDoc{
		Groups: make(map[string]infoGroup, len(d.Groups)),
		Meta:   infoMeta{CacheLocation: d.CacheLocation, CacheExists: d.CacheExists},
	}
	for _, g := range d.Groups {
		ig := infoGroup{
			Landmarks:    g.Landmarks,
			ManifestFile: g.ManifestPath,
			Built:        g.Built(),
			Status:       fmt.Sprint(g.Status),
		}
		switch s := g.Status.(type) {
		case landmarks.Built:
			ig.BuildID = s.Manifest.BuildID
			ig.CreatedAt = s.Manifest.CreatedAt
		case landmarks.Corrupt:
			ig.Reason = s.Reason
		}
		doc.Groups[g.Name] = ig
	}
	return doc
}

func writeInfoYAML(w io.Writer, d *landmarks.Description) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toInfoDoc(d)); err != nil {
		return fmt.Errorf("cannot encode description: %w", err)
	}
	return enc.Close()
}

func writeInfoText(w io.Writer, d *landmarks.Description) {
	fmt.Fprintln(w, "=== Landmark cache ===")
	fmt.Fprintf(w, "  location: %s\n", d.CacheLocation)
	if !d.CacheExists {
		fmt.Fprintln(w, "  -  cache does not exist yet")
	}

	var built, notBuilt, corrupt []string
	for _, g := range d.Groups {
		label := g.Name
		if g.Description != "" {
			label = fmt.Sprintf("%s (%s)", g.Name, g.Description)
		}
		switch s := g.Status.(type) {
		case landmarks.Built:
			built = append(built, fmt.Sprintf("  ✓  [%s] %d landmarks, built %s\n      %s",
				label, g.Landmarks, s.Manifest.CreatedAt, g.ManifestPath))
		case landmarks.Corrupt:
			corrupt = append(corrupt, fmt.Sprintf("  ✗  [%s] %s\n      run: vectome build %d --force",
				label, s.Reason, g.ID))
		default:
			notBuilt = append(notBuilt, fmt.Sprintf("  ○  [%s] %d landmarks  (run: vectome build %d)",
				label, g.Landmarks, g.ID))
		}
	}

	if len(built) > 0 {
		fmt.Fprintln(w, "\n● Built:")
		for _, s := range built {
			fmt.Fprintln(w, s)
		}
	}
	if len(notBuilt) > 0 {
		fmt.Fprintln(w, "\n● Not built:")
		for _, s := range notBuilt {
			fmt.Fprintln(w, s)
		}
	}
	if len(corrupt) > 0 {
		fmt.Fprintln(w, "\n● Corrupt:")
		for _, s := range corrupt {
			fmt.Fprintln(w, s)
		}
	}
	fmt.Fprintf(w, "\n  %d built / %d not built / %d corrupt  (total: %d groups)\n",
		len(built), len(notBuilt), len(corrupt), len(d.Groups))
}
