package sampler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/moves"
	"github.com/roach88/outbreak/internal/rng"
	"github.com/roach88/outbreak/internal/trace"
)

// Sample is one recorded chain state.
type Sample struct {
	Iteration     int         `json:"iter"`
	LogLikelihood float64     `json:"loglike"`
	State         chain.State `json:"state"`
	StateHash     string      `json:"state_hash"`
}

// String renders the sample on one line.
func (s Sample) String() string {
	return fmt.Sprintf("iter=%d ll=%s mu=%s t_inf=%v alpha=%v",
		s.Iteration,
		strconv.FormatFloat(s.LogLikelihood, 'g', -1, 64),
		strconv.FormatFloat(s.State.Mu, 'g', -1, 64),
		s.State.TInf,
		s.State.Alpha,
	)
}

// MarshalJSON encodes a non-finite log-likelihood as a string.
func (s Sample) MarshalJSON() ([]byte, error) {
	type plain Sample
	return json.Marshal(struct {
		plain
		LogLikelihood JSONFloat `json:"loglike"`
	}{plain(s), JSONFloat(s.LogLikelihood)})
}

// JSONFloat is a float64 that encodes non-finite values as strings ("-Inf",
// "NaN"), which encoding/json cannot represent as numbers.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

// Sink receives recorded samples in iteration order.
type Sink interface {
	WriteSample(ctx context.Context, s Sample) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, s Sample) error

// WriteSample implements Sink.
func (f SinkFunc) WriteSample(ctx context.Context, s Sample) error {
	return f(ctx, s)
}

// Observer is notified of kernel outcomes and finished sweeps.
// *metrics.Collector implements it.
type Observer interface {
	ObserveMove(out moves.Outcome)
	ObserveSweep(logLikelihood, mu float64, elapsed time.Duration)
}

// Options control a run.
type Options struct {
	// Iterations is the number of sweeps. Must be positive.
	Iterations int

	// SampleEvery is the thinning period. The starting state is always
	// recorded as iteration 0. Zero means 1.
	SampleEvery int

	// LogEvery is the progress logging period. Zero disables progress lines.
	LogEvery int

	// Moves lists the kernels applied each sweep, in order. Nil means
	// moves.AllMoves.
	Moves []moves.Move

	Sink     Sink
	Observer Observer
	Logger   *slog.Logger
}

// Tally counts proposals for one move over a run.
type Tally struct {
	Proposed int `json:"proposed"`
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// Rate returns the acceptance rate, or 0 before any proposal.
func (t Tally) Rate() float64 {
	if t.Proposed == 0 {
		return 0
	}
	return float64(t.Accepted) / float64(t.Proposed)
}

// Summary reports a finished (or interrupted) run.
type Summary struct {
	Iterations    int                  `json:"iterations"`
	Samples       int                  `json:"samples"`
	LogLikelihood float64              `json:"loglike"`
	Final         chain.State          `json:"final"`
	Moves         map[moves.Move]Tally `json:"moves"`
}

// Sampler drives a Kernel over many sweeps.
type Sampler struct {
	data   chain.Data
	eval   likelihood.Evaluator
	kernel *moves.Kernel
	opts   Options
	logger *slog.Logger
}

// New creates a Sampler.
func New(d chain.Data, eval likelihood.Evaluator, src rng.Source, cfg moves.Config, opts Options) (*Sampler, error) {
	if d == nil {
		return nil, fmt.Errorf("sampler: nil data")
	}
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("sampler: iterations must be positive, got %d", opts.Iterations)
	}
	if opts.SampleEvery < 0 || opts.LogEvery < 0 {
		return nil, fmt.Errorf("sampler: negative sample or log period")
	}
	if opts.SampleEvery == 0 {
		opts.SampleEvery = 1
	}
	if opts.Moves == nil {
		opts.Moves = moves.AllMoves
	}
	for _, m := range opts.Moves {
		if !slices.Contains(moves.AllMoves, m) {
			return nil, fmt.Errorf("sampler: unknown move %q", m)
		}
	}

	k, err := moves.New(eval, src, cfg)
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{data: d, eval: eval, kernel: k, opts: opts, logger: logger}, nil
}

// Run performs the configured number of sweeps starting from init.
//
// On cancellation Run returns the summary so far together with ctx.Err().
// A Sink error stops the run.
func (s *Sampler) Run(ctx context.Context, init chain.State) (Summary, error) {
	if err := init.Validate(s.data.NumCases()); err != nil {
		return Summary{}, fmt.Errorf("invalid starting state: %w", err)
	}

	state := init.Clone()
	ll := s.eval.Joint(s.data, state)
	sum := Summary{
		Final:         state,
		LogLikelihood: ll,
		Moves:         make(map[moves.Move]Tally, len(s.opts.Moves)),
	}

	s.logger.Info("chain starting",
		"cases", s.data.NumCases(),
		"iterations", s.opts.Iterations,
		"sample_every", s.opts.SampleEvery,
		"moves", s.opts.Moves,
		"loglike", ll,
	)
	if math.IsInf(ll, -1) || math.IsNaN(ll) {
		s.logger.Warn("starting state has zero likelihood", "loglike", ll)
	}

	if err := s.record(ctx, &sum, 0, state, ll); err != nil {
		return sum, err
	}

	for iter := 1; iter <= s.opts.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("chain interrupted", "iteration", sum.Iterations, "error", err)
			return sum, err
		}

		start := time.Now()
		for _, m := range s.opts.Moves {
			next, out, err := s.kernel.Apply(m, s.data, state)
			if err != nil {
				return sum, fmt.Errorf("iteration %d: %w", iter, err)
			}
			state = next
			tally := sum.Moves[m]
			tally.Proposed += out.Proposed
			tally.Accepted += out.Accepted
			tally.Skipped += out.Skipped
			sum.Moves[m] = tally
			if s.opts.Observer != nil {
				s.opts.Observer.ObserveMove(out)
			}
			for _, lr := range out.Local {
				s.logger.Debug("ancestry ratio",
					"iteration", iter,
					"case", lr.Case,
					"full", lr.Full,
					"local", lr.Local,
					"accepted", lr.Accepted,
				)
			}
		}

		ll = s.eval.Joint(s.data, state)
		sum.Iterations = iter
		sum.Final = state
		sum.LogLikelihood = ll
		if s.opts.Observer != nil {
			s.opts.Observer.ObserveSweep(ll, state.Mu, time.Since(start))
		}

		if iter%s.opts.SampleEvery == 0 {
			if err := s.record(ctx, &sum, iter, state, ll); err != nil {
				return sum, err
			}
		}
		if s.opts.LogEvery > 0 && iter%s.opts.LogEvery == 0 {
			s.logProgress(iter, ll, state.Mu, sum.Moves)
		}
	}

	s.logger.Info("chain finished",
		"iterations", sum.Iterations,
		"samples", sum.Samples,
		"loglike", sum.LogLikelihood,
	)
	return sum, nil
}

func (s *Sampler) record(ctx context.Context, sum *Summary, iter int, state chain.State, ll float64) error {
	if s.opts.Sink == nil {
		return nil
	}
	hash, err := trace.StateHash(state)
	if err != nil {
		return fmt.Errorf("iteration %d: %w", iter, err)
	}
	sample := Sample{
		Iteration:     iter,
		LogLikelihood: ll,
		State:         state.Clone(),
		StateHash:     hash,
	}
	if err := s.opts.Sink.WriteSample(ctx, sample); err != nil {
		return fmt.Errorf("iteration %d: write sample: %w", iter, err)
	}
	sum.Samples++
	return nil
}

func (s *Sampler) logProgress(iter int, ll, mu float64, tallies map[moves.Move]Tally) {
	attrs := []any{"iteration", iter, "loglike", ll, "mu", mu}
	for _, m := range s.opts.Moves {
		attrs = append(attrs, "accept_"+string(m), tallies[m].Rate())
	}
	s.logger.Info("chain progress", attrs...)
}
