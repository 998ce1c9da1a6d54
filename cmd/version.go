package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vectome/vectome/internal/landmarks"
)

var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show vectome version and build information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Version:       %s\n", version)
	fmt.Fprintf(out, "Commit:        %s\n", emptyAsNA(commit))
	fmt.Fprintf(out, "Build Date:    %s\n", emptyAsNA(buildDate))
	fmt.Fprintf(out, "Cache Format:  %d\n", landmarks.FormatVersion)
	fmt.Fprintf(out, "Go Version:    %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
