package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vectome/vectome/internal/landmarks"
)

var (
	flagBuildForce bool
	flagBuildAll   bool
)

var buildCmd = &cobra.Command{
	Use:   "build [group...]",
	Short: "Fetch and cache the sketches of landmark groups",
	Long: `Resolve every landmark of a group through the configured sketch source and
cache the sketches under <cache>/landmarks/group-<n>.

A group that is already built is left untouched unless --force is given.
A failed build never replaces a previously built group.

Groups are given as "1" or "group-1".`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&flagBuildForce, "force", "f", false, "Rebuild even if the group is already built")
	buildCmd.Flags().BoolVar(&flagBuildAll, "all", false, "Build every group in the catalog")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg, src)
	if err != nil {
		return err
	}
	ids, err := selectGroups(st, args, flagBuildAll)
	if err != nil {
		return err
	}

	st.OnProgress = func(p landmarks.Progress) {
		printInfo(p.Group, fmt.Sprintf("%d/%d %s", p.Done, p.Total, p.ID))
	}

	printSection("vectome build")
	var failed int
	for _, id := range ids {
		name := landmarks.GroupName(id)
		if !flagBuildForce {
			if g, err := st.Load(id); err == nil {
				printSkip(name, fmt.Sprintf("already built (%d landmarks); use --force to rebuild", len(g.Landmarks)))
				continue
			}
		}
		g, err := st.Build(cmd.Context(), id, flagBuildForce)
		if err != nil {
			printErr(name, err.Error())
			failed++
			continue
		}
		printOK(name, fmt.Sprintf("built %d landmarks → %s", len(g.Landmarks), g.ManifestPath))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d group(s) failed to build", failed, len(ids))
	}
	return nil
}

// selectGroups parses group arguments, or returns every catalog group when
// all is set.
func selectGroups(st *landmarks.Store, args []string, all bool) ([]int, error) {
	if all {
		var ids []int
		for _, g := range st.Catalog().Groups() {
			ids = append(ids, g.ID)
		}
		return ids, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no group given (use a group id or --all)")
	}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := landmarks.ParseGroupID(a)
		if err != nil {
			return nil, err
		}
		if _, err := st.Catalog().Lookup(id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
