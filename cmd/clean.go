package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vectome/vectome/internal/landmarks"
)

var flagCleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean [group...]",
	Short: "Delete cached landmark groups",
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&flagCleanAll, "all", false, "Delete every cached group")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg, nil)
	if err != nil {
		return err
	}
	ids, err := selectGroups(st, args, flagCleanAll)
	if err != nil {
		return err
	}

	var failed int
	for _, id := range ids {
		name := landmarks.GroupName(id)
		if err := st.Clean(id); err != nil {
			printErr(name, err.Error())
			failed++
			continue
		}
		printOK(name, "removed")
	}
	if failed > 0 {
		return fmt.Errorf("%d group(s) could not be removed", failed)
	}
	return nil
}
