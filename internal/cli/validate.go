package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/outbreak/internal/moves"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidationResult is the output of the validate command.
type ValidationResult struct {
	Valid          bool         `json:"valid"`
	Data           string       `json:"data"`
	Cases          int          `json:"cases"`
	GenomeLength   int          `json:"genome_length"`
	IncubationMode int          `json:"incubation_mode"`
	Iterations     int          `json:"iterations"`
	Seed           uint64       `json:"seed"`
	Moves          []moves.Move `json:"moves"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a run configuration and its case data",
		Long: `Load a run configuration and the case file it names, and report any error
without running the chain.

Examples:
  outbreak validate --config run.yaml
  outbreak validate --config run.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to run configuration (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	cfg, data, err := loadRun(opts.Config)
	if err != nil {
		return reportLoadError(out, err)
	}
	out.VerboseLog("Loaded %d case(s) from %s", data.NumCases(), cfg.Data)

	result := ValidationResult{
		Valid:          true,
		Data:           cfg.Data,
		Cases:          data.NumCases(),
		GenomeLength:   data.GenomeLength,
		IncubationMode: data.IncubationMode,
		Iterations:     cfg.Iterations,
		Seed:           cfg.Seed,
		Moves:          cfg.Moves.Enabled(),
	}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid\n", opts.Config)
		fmt.Fprintf(w, "  Cases: %d (genome length %d)\n", result.Cases, result.GenomeLength)
		fmt.Fprintf(w, "  Iterations: %d, seed %d, moves %v\n", result.Iterations, result.Seed, result.Moves)
	})
}
