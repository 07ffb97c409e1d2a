package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/outbreak/internal/sampler"
)

// SamplesOptions holds flags for the samples command.
type SamplesOptions struct {
	*RootOptions
	Database string
	RunID    string
	Last     int
}

// SamplesResult is the output of the samples command.
type SamplesResult struct {
	RunID   string           `json:"run_id"`
	Samples []sampler.Sample `json:"samples"`
}

// NewSamplesCommand creates the samples command.
func NewSamplesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SamplesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Print recorded samples of a run",
		Long: `Print the samples recorded for a run, oldest first.

Examples:
  outbreak samples --db chain.db
  outbreak samples --db chain.db --run 0190f1d2-... --last 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSamples(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	cmd.Flags().IntVarP(&opts.Last, "last", "n", 0, "only the last n samples (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSamples(opts *SamplesOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Last < 0 {
		msg := fmt.Sprintf("--last must not be negative, got %d", opts.Last)
		out.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	st, err := openExisting(out, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := findRun(ctx, out, st, opts.RunID)
	if err != nil {
		return err
	}

	samples, err := st.LastSamples(ctx, run.ID, opts.Last)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read samples", err)
	}

	result := SamplesResult{RunID: run.ID, Samples: samples}
	return out.Success(result, func(w io.Writer) {
		for _, s := range samples {
			fmt.Fprintln(w, s.String())
		}
	})
}

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "runs",
		Short:         "List recorded runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func listRuns(opts *RunsOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExisting(out, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	return out.Success(runs, func(w io.Writer) {
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs found in database.")
			return
		}
		for _, r := range runs {
			fmt.Fprintf(w, "%s  seed=%d  %s  iterations=%d\n", r.ID, r.Seed, r.Status, r.Iterations)
		}
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

