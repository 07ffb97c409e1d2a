package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/outbreak/internal/config"
	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/rng"
	"github.com/roach88/outbreak/internal/sampler"
	"github.com/roach88/outbreak/internal/store"
	"github.com/roach88/outbreak/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
}

// ReplayResult is the output of the replay command.
type ReplayResult struct {
	RunID           string           `json:"run_id"`
	Seed            uint64           `json:"seed"`
	Iterations      int              `json:"iterations"`
	Compared        int              `json:"compared"`
	Deterministic   bool             `json:"deterministic"`
	Draws           int64            `json:"draws,omitempty"`
	DrawsMatch      *bool            `json:"draws_match,omitempty"`
	FirstDivergence int              `json:"first_divergence,omitempty"`
	Missing         []int            `json:"missing,omitempty"`
	Extra           []int            `json:"extra,omitempty"`
	Mismatches      []store.Mismatch `json:"mismatches,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rerun a stored chain and verify it reproduces",
		Long: `Rerun a recorded chain from its stored configuration and seed, and compare
every replayed sample with the stored one by state hash.

Exit codes:
  0 - Replay reproduced every stored sample
  1 - Replay diverged from the stored samples
  2 - Command error (database not found, unknown run, etc.)

Examples:
  outbreak replay --db chain.db
  outbreak replay --db chain.db --run 0190f1d2-...
  outbreak replay --db chain.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
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

	cfg, err := config.Decode([]byte(run.Config))
	if err != nil {
		return reportLoadError(out, err)
	}
	data, err := cfg.LoadData()
	if err != nil {
		return reportLoadError(out, err)
	}
	if run.DataHash != "" {
		dataHash, err := cfg.DataHash()
		if err != nil {
			return reportLoadError(out, err)
		}
		if dataHash != run.DataHash {
			msg := fmt.Sprintf("case file %s changed since run %s was recorded", cfg.Data, run.ID)
			out.Error(ErrCodeData, msg, map[string]any{"recorded": run.DataHash, "current": dataHash})
			return NewExitError(ExitCommandError, msg)
		}
	}

	iterations := run.Iterations
	if iterations == 0 {
		// A crashed run never recorded its count; use its last sample.
		last, err := st.LastSamples(ctx, run.ID, 1)
		if err != nil {
			out.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read samples", err)
		}
		if len(last) > 0 {
			iterations = last[0].Iteration
		}
	}
	if iterations == 0 {
		out.Error(ErrCodeNotFound, fmt.Sprintf("run %s has no completed iterations", run.ID), nil)
		return NewExitError(ExitCommandError, "nothing to replay")
	}

	verifier, err := st.NewVerifier(ctx, run.ID)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load samples", err)
	}

	draws := trace.NewDrawDigest(rng.NewSeeded(run.Seed))
	s, err := sampler.New(data, likelihood.Model{}, draws, cfg.KernelConfig(), sampler.Options{
		Iterations:  iterations,
		SampleEvery: cfg.SampleEvery,
		Moves:       cfg.Moves.Enabled(),
		Sink:        verifier,
		Logger:      logger.With("replay", run.ID),
	})
	if err != nil {
		out.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to create sampler", err)
	}
	if _, err := s.Run(ctx, sampler.Init(data, cfg.InitMu)); err != nil {
		out.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "replay failed", err)
	}

	report := verifier.Report()
	result := ReplayResult{
		RunID:         run.ID,
		Seed:          run.Seed,
		Iterations:    iterations,
		Compared:      report.Compared,
		Deterministic: report.OK(),
		Missing:       report.Missing,
		Extra:         report.Extra,
		Mismatches:    report.Mismatches,
	}
	if first := report.FirstDivergence(); first >= 0 {
		result.FirstDivergence = first
	}
	// Runs that stopped between sweeps consumed a well-defined stream; a
	// failed run may have stopped mid-sweep.
	if run.DrawsHash != "" && run.Status != store.StatusFailed {
		match := draws.Count() == run.Draws && draws.Sum() == run.DrawsHash
		result.Draws = draws.Count()
		result.DrawsMatch = &match
		result.Deterministic = result.Deterministic && match
	}

	text := func(w io.Writer) { printReplayResult(w, result, opts.Verbose) }
	if result.Deterministic {
		return out.Success(result, text)
	}
	if err := out.Failure(ErrCodeDivergence, "replay diverged from stored samples", result, text); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "replay diverged from stored samples")
}

func printReplayResult(w io.Writer, r ReplayResult, verbose bool) {
	fmt.Fprintf(w, "Replay of run %s (seed %d, %d iterations)\n", r.RunID, r.Seed, r.Iterations)
	fmt.Fprintf(w, "  Samples compared: %d\n", r.Compared)
	if r.DrawsMatch != nil {
		fmt.Fprintf(w, "  Random draws: %d (match: %t)\n", r.Draws, *r.DrawsMatch)
	}

	if r.Deterministic {
		fmt.Fprintln(w, "✓ Replay reproduced every stored sample")
		return
	}

	if len(r.Mismatches) > 0 {
		fmt.Fprintf(w, "  First divergence at iteration %d\n", r.FirstDivergence)
	}
	if r.DrawsMatch != nil && !*r.DrawsMatch {
		fmt.Fprintln(w, "  Random draw stream differs from the recorded run")
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "  Stored but not replayed: %v\n", r.Missing)
	}
	if len(r.Extra) > 0 {
		fmt.Fprintf(w, "  Replayed but not stored: %v\n", r.Extra)
	}
	if verbose {
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "  iter %d: stored %s, replayed %s\n", m.Iteration, m.Stored, m.Replayed)
		}
	}
	fmt.Fprintln(w, "✗ Replay diverged")
}

// openExisting opens a database that must already exist.
func openExisting(out *OutputFormatter, path string) (*store.Store, error) {
	if !fileExists(path) {
		msg := fmt.Sprintf("database not found: %s", path)
		out.Error(ErrCodeStore, msg, nil)
		return nil, NewExitError(ExitCommandError, msg)
	}
	st, err := store.Open(path)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// findRun returns the run with the given id, or the latest run when id is
// empty.
func findRun(ctx context.Context, out *OutputFormatter, st *store.Store, id string) (store.Run, error) {
	var (
		run store.Run
		err error
	)
	if id == "" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.ReadRun(ctx, id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		msg := "no runs in database"
		if id != "" {
			msg = fmt.Sprintf("run not found: %s", id)
		}
		out.Error(ErrCodeNotFound, msg, nil)
		return store.Run{}, NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return store.Run{}, WrapExitError(ExitCommandError, "failed to read run", err)
	}
	return run, nil
}
