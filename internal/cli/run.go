package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/outbreak/internal/config"
	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/metrics"
	"github.com/roach88/outbreak/internal/rng"
	"github.com/roach88/outbreak/internal/sampler"
	"github.com/roach88/outbreak/internal/store"
	"github.com/roach88/outbreak/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config      string
	Database    string
	MetricsAddr string
}

// MoveResult reports acceptance for one move.
type MoveResult struct {
	Proposed int     `json:"proposed"`
	Accepted int     `json:"accepted"`
	Skipped  int     `json:"skipped,omitempty"`
	Rate     float64 `json:"rate"`
}

// RunResult is the output of the run command.
type RunResult struct {
	RunID         string                `json:"run_id"`
	Seed          uint64                `json:"seed"`
	Status        store.RunStatus       `json:"status"`
	Iterations    int                   `json:"iterations"`
	Samples       int                   `json:"samples"`
	Draws         int64                 `json:"draws"`
	LogLikelihood sampler.JSONFloat     `json:"loglike"`
	Mu            float64               `json:"mu"`
	Moves         map[string]MoveResult `json:"moves"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the chain and record samples",
		Long: `Run the transmission-tree chain described by a configuration file.

The configuration (YAML or CUE) names the case file, the delay distributions
and the chain settings. Samples are written to the SQLite database under a
new run id. Ctrl-C stops the chain after the current sweep; the samples
recorded so far are kept and the run is marked interrupted.

Examples:
  outbreak run --config run.yaml --db chain.db
  outbreak run --config run.cue --db chain.db --metrics-addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChain(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to run configuration (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runChain(opts *RunOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, data, err := loadRun(opts.Config)
	if err != nil {
		return reportLoadError(out, err)
	}
	logger.Info("data loaded", "cases", data.NumCases(), "genome_length", data.GenomeLength)

	dataHash, err := cfg.DataHash()
	if err != nil {
		return reportLoadError(out, err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after current sweep", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		out.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to set up metrics", err)
	}
	if opts.MetricsAddr != "" {
		reg.MustRegister(collectors.NewGoCollector())
		stop, err := serveMetrics(opts.MetricsAddr, reg, logger)
		if err != nil {
			out.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to start metrics server", err)
		}
		defer stop()
	}

	encoded, err := cfg.Encode()
	if err != nil {
		out.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to encode config", err)
	}
	run, err := st.CreateRun(ctx, cfg.Seed, encoded, dataHash)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to create run", err)
	}
	logger.Info("run created", "run", run.ID, "seed", cfg.Seed, "data_hash", dataHash)

	draws := trace.NewDrawDigest(rng.NewSeeded(cfg.Seed))
	s, err := sampler.New(data, likelihood.Model{}, draws, cfg.KernelConfig(), sampler.Options{
		Iterations:  cfg.Iterations,
		SampleEvery: cfg.SampleEvery,
		LogEvery:    cfg.LogEvery,
		Moves:       cfg.Moves.Enabled(),
		Sink:        st.Sink(run.ID),
		Observer:    collector,
		Logger:      logger.With("run", run.ID),
	})
	if err != nil {
		failRun(ctx, st, out, logger, run.ID, store.Completion{}, err)
		return WrapExitError(ExitFailure, "failed to create sampler", err)
	}

	sum, runErr := s.Run(ctx, sampler.Init(data, cfg.InitMu))
	completion := store.Completion{
		Status:     store.StatusFinished,
		Iterations: sum.Iterations,
		Draws:      draws.Count(),
		DrawsHash:  draws.Sum(),
	}
	switch {
	case errors.Is(runErr, context.Canceled):
		completion.Status = store.StatusInterrupted
	case runErr != nil:
		failRun(ctx, st, out, logger, run.ID, completion, runErr)
		return WrapExitError(ExitFailure, "chain failed", runErr)
	}
	// Record the outcome even when the run context is already cancelled.
	if err := st.FinishRun(context.WithoutCancel(ctx), run.ID, completion); err != nil {
		logger.Error("failed to record run status", "run", run.ID, "error", err)
	}

	result := newRunResult(run, completion, sum)
	text := func(w io.Writer) { printRunResult(w, result) }
	if completion.Status == store.StatusInterrupted {
		msg := fmt.Sprintf("chain interrupted after %d iterations", sum.Iterations)
		if err := out.Failure(ErrCodeInterrupted, msg, result, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return out.Success(result, text)
}

// failRun marks a created run as failed and reports cause. Partial results in
// c are kept on the run row.
func failRun(ctx context.Context, st *store.Store, out *OutputFormatter, logger *slog.Logger, runID string, c store.Completion, cause error) {
	c.Status = store.StatusFailed
	if err := st.FinishRun(context.WithoutCancel(ctx), runID, c); err != nil {
		logger.Error("failed to record run status", "run", runID, "error", err)
	}
	out.Error(ErrCodeGeneric, cause.Error(), map[string]any{"run_id": runID, "iterations": c.Iterations})
}

// loadRun reads the configuration and the case data it points at.
func loadRun(path string) (config.Run, *likelihood.Data, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Run{}, nil, err
	}
	data, err := cfg.LoadData()
	if err != nil {
		return config.Run{}, nil, err
	}
	return cfg, data, nil
}

// reportLoadError writes a config or data error and converts it to an
// ExitError.
func reportLoadError(out *OutputFormatter, err error) error {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		msg := cfgErr.Message
		if cfgErr.Field != "" {
			msg = cfgErr.Field + ": " + msg
		}
		if cfgErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", cfgErr.Pos.Filename(), cfgErr.Pos.Line(), cfgErr.Pos.Column(), msg)
		}
		out.Error(cfgErr.Code, msg, nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	out.Error(ErrCodeData, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load case data", err)
}

func newRunResult(run store.Run, c store.Completion, sum sampler.Summary) RunResult {
	result := RunResult{
		RunID:         run.ID,
		Seed:          run.Seed,
		Status:        c.Status,
		Iterations:    sum.Iterations,
		Samples:       sum.Samples,
		Draws:         c.Draws,
		LogLikelihood: sampler.JSONFloat(sum.LogLikelihood),
		Mu:            sum.Final.Mu,
		Moves:         make(map[string]MoveResult, len(sum.Moves)),
	}
	for m, t := range sum.Moves {
		result.Moves[string(m)] = MoveResult{
			Proposed: t.Proposed,
			Accepted: t.Accepted,
			Skipped:  t.Skipped,
			Rate:     t.Rate(),
		}
	}
	return result
}

func printRunResult(w io.Writer, r RunResult) {
	fmt.Fprintf(w, "Run %s (%s)\n", r.RunID, r.Status)
	fmt.Fprintf(w, "  Seed: %d\n", r.Seed)
	fmt.Fprintf(w, "  Iterations: %d, samples: %d, draws: %d\n", r.Iterations, r.Samples, r.Draws)
	fmt.Fprintf(w, "  Log-likelihood: %g, mu: %g\n", r.LogLikelihood, r.Mu)
	for _, name := range []string{"mu", "t_inf", "alpha"} {
		m, ok := r.Moves[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-6s accepted %d/%d (%.1f%%)\n", name, m.Accepted, m.Proposed, 100*m.Rate)
	}
}

// serveMetrics starts a Prometheus endpoint on addr and returns a function
// that shuts it down.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}, nil
}
