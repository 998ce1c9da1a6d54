package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectome/vectome/internal/config"
	"github.com/vectome/vectome/internal/landmarks"
	"github.com/vectome/vectome/internal/pipeline"
	"github.com/vectome/vectome/internal/source"
)

var (
	flagEmbedDim        int
	flagEmbedMethod     string
	flagEmbedProjection int
	flagEmbedSeed       int64
	flagEmbedGroup      string
	flagEmbedHashes     int
	flagEmbedNormalize  bool
	flagEmbedOutput     string
	flagEmbedNoHeader   bool
	flagEmbedWorkers    int
	flagEmbedTimeout    time.Duration
)

var embedCmd = &cobra.Command{
	Use:   "embed [identifiers-file]",
	Short: "Embed a list of genome identifiers as TSV vectors",
	Long: `Read newline-delimited identifiers from a file (or stdin when the file is
omitted or "-") and write one TSV row per identifier.

Methods:
  countsketch   fold the sketch into -n columns with CountSketch
  landmark      Jaccard distance to each landmark of group -g (run 'vectome build' first)

With -z the vector is randomly projected to that many columns.
Identifiers that fail to resolve are written as NA rows and reported on stderr;
the command then exits non-zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmbed,
}

func init() {
	def := pipeline.DefaultParams()
	embedCmd.Flags().IntVarP(&flagEmbedDim, "dimensionality", "n", def.Dim, "Folded vector length (countsketch)")
	embedCmd.Flags().StringVarP(&flagEmbedMethod, "method", "m", string(def.Method), "Vectorization method: countsketch or landmark")
	embedCmd.Flags().IntVarP(&flagEmbedProjection, "projection", "z", 0, "Random projection dimension (0 disables)")
	embedCmd.Flags().Int64VarP(&flagEmbedSeed, "seed", "i", def.Seed, "Seed for hashing and projection")
	embedCmd.Flags().StringVarP(&flagEmbedGroup, "group", "g", "0", "Landmark group (landmark method)")
	embedCmd.Flags().IntVar(&flagEmbedHashes, "hashes", def.Hashes, "CountSketch repetitions per hash value")
	embedCmd.Flags().BoolVar(&flagEmbedNormalize, "normalize", def.Normalize, "L2-normalize the folded vector")
	embedCmd.Flags().StringVarP(&flagEmbedOutput, "output", "o", "", "Write TSV to this file instead of stdout")
	embedCmd.Flags().BoolVar(&flagEmbedNoHeader, "no-header", false, "Omit the header row")
	embedCmd.Flags().IntVar(&flagEmbedWorkers, "workers", 0, "Concurrent identifiers (default: config or CPU count)")
	embedCmd.Flags().DurationVar(&flagEmbedTimeout, "timeout", 0, "Per-identifier resolution timeout (default: config)")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	params, err := resolveEmbedParams(cmd, cfg)
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	ids, err := readIdentifierInput(cmd, args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no identifiers given")
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	var store *landmarks.Store
	if params.Method == pipeline.MethodLandmark {
		if store, err = openStore(cfg, src); err != nil {
			return err
		}
	}

	p := pipeline.New(src, store)
	p.Workers = cfg.Workers
	p.Timeout = cfg.Timeout
	if cmd.Flags().Changed("workers") {
		p.Workers = flagEmbedWorkers
	}
	if cmd.Flags().Changed("timeout") {
		p.Timeout = flagEmbedTimeout
	}

	res, runErr := p.EmbedBatch(cmd.Context(), ids, params)
	if res == nil {
		return runErr
	}
	if err := writeEmbedOutput(cmd, res); err != nil {
		return err
	}

	failed := res.Failed()
	if len(failed) > 0 {
		printBullet("Failed identifiers:")
		for _, row := range failed {
			msg := fmt.Sprintf("%s: %v", pipeline.ErrorKind(row.Err), row.Err)
			if source.IsResolutionFailure(row.Err) {
				printWarn(row.ID, msg)
			} else {
				printErr(row.ID, msg)
			}
		}
	}
	printInfo("", fmt.Sprintf("%d/%d identifiers embedded (%s, %d columns)",
		len(res.Rows)-len(failed), len(res.Rows), params.Method, len(res.Columns)))

	if runErr != nil {
		return fmt.Errorf("embedding interrupted: %w", runErr)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d identifiers failed", len(failed), len(res.Rows))
	}
	return nil
}

// resolveEmbedParams merges explicit flags over the config defaults.
func resolveEmbedParams(cmd *cobra.Command, cfg *config.Config) (pipeline.Params, error) {
	d := cfg.Defaults
	method := d.Method
	if cmd.Flags().Changed("method") {
		method = flagEmbedMethod
	}
	m, err := pipeline.ParseMethod(method)
	if err != nil {
		return pipeline.Params{}, err
	}

	params := pipeline.Params{
		Method:     m,
		Dim:        d.Dim,
		Hashes:     d.Hashes,
		Normalize:  d.Normalize == nil || *d.Normalize,
		Projection: d.Projection,
		Seed:       d.Seed,
		Group:      d.Group,
	}
	f := cmd.Flags()
	if f.Changed("dimensionality") {
		params.Dim = flagEmbedDim
	}
	if f.Changed("hashes") {
		params.Hashes = flagEmbedHashes
	}
	if f.Changed("normalize") {
		params.Normalize = flagEmbedNormalize
	}
	if f.Changed("projection") {
		params.Projection = flagEmbedProjection
	}
	if f.Changed("seed") {
		params.Seed = flagEmbedSeed
	}
	if f.Changed("group") {
		if params.Group, err = landmarks.ParseGroupID(flagEmbedGroup); err != nil {
			return pipeline.Params{}, err
		}
	}
	return params, nil
}

func readIdentifierInput(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) == 0 || args[0] == "-" {
		return pipeline.ReadIdentifiers(cmd.InOrStdin())
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("cannot open identifiers file: %w", err)
	}
	defer f.Close()
	return pipeline.ReadIdentifiers(f)
}

// writeEmbedOutput writes the TSV to stdout, or to -o through a temporary
// file renamed into place.
func writeEmbedOutput(cmd *cobra.Command, res *pipeline.Result) error {
	header := !flagEmbedNoHeader
	if flagEmbedOutput == "" {
		return pipeline.WriteTSV(cmd.OutOrStdout(), res, header)
	}

	dir := filepath.Dir(flagEmbedOutput)
	tmp, err := os.CreateTemp(dir, ".vectome-*.tsv")
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeAndClose(tmp, func(w io.Writer) error { return pipeline.WriteTSV(w, res, header) }); err != nil {
		return fmt.Errorf("cannot write %s: %w", flagEmbedOutput, err)
	}
	if err := os.Rename(tmp.Name(), flagEmbedOutput); err != nil {
		return fmt.Errorf("cannot write %s: %w", flagEmbedOutput, err)
	}
	printOK("", fmt.Sprintf("vectors written: %s", flagEmbedOutput))
	return nil
}

func writeAndClose(f *os.File, write func(io.Writer) error) error {
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
