package moves

import (
	"fmt"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/rng"
)

// Move names a kernel.
type Move string

const (
	MoveMu    Move = "mu"
	MoveTInf  Move = "t_inf"
	MoveAlpha Move = "alpha"
)

// AllMoves lists the kernels in sweep order.
var AllMoves = []Move{MoveMu, MoveTInf, MoveAlpha}

// Config holds fixed kernel settings.
type Config struct {
	// SdMu is the standard deviation of the mutation-rate proposal.
	// Zero turns MoveMu into a no-op; negative is rejected.
	SdMu float64

	// LocalRatio makes MoveAlpha also evaluate the joint likelihood restricted
	// to the moved case, before and after the proposal, and report it in
	// Outcome.Local. The decision always uses the whole-population ratio.
	LocalRatio bool
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SdMu < 0 {
		return chain.NewScaleError("sd_mu", c.SdMu)
	}
	return nil
}

// Outcome summarizes one kernel call.
type Outcome struct {
	Move     Move `json:"move"`
	Proposed int  `json:"proposed"`
	Accepted int  `json:"accepted"`

	// Skipped counts cases MoveAlpha left alone (roots, or no earlier case).
	Skipped int `json:"skipped,omitempty"`

	// Local is filled by MoveAlpha when Config.LocalRatio is set.
	Local []LocalRatio `json:"local,omitempty"`
}

// LocalRatio records both log-likelihood differences of one ancestry proposal.
type LocalRatio struct {
	Case     chain.Case `json:"case"`
	Full     float64    `json:"full"`
	Local    float64    `json:"local"`
	Accepted bool       `json:"accepted"`
}

// Kernel applies the moves to chain states.
//
// A Kernel keeps no chain state between calls: every move takes a state and
// returns a new one. Not safe for concurrent use, since the Source is
// stateful.
type Kernel struct {
	eval likelihood.Evaluator
	src  rng.Source
	cfg  Config
}

// New creates a Kernel. It returns an error if cfg is invalid.
func New(eval likelihood.Evaluator, src rng.Source, cfg Config) (*Kernel, error) {
	if eval == nil {
		return nil, fmt.Errorf("moves: nil evaluator")
	}
	if src == nil {
		return nil, fmt.Errorf("moves: nil random source")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Kernel{eval: eval, src: src, cfg: cfg}, nil
}

// Config returns the kernel configuration.
func (k *Kernel) Config() Config {
	return k.cfg
}

// Apply dispatches to the kernel named by m.
func (k *Kernel) Apply(m Move, d chain.Data, s chain.State) (chain.State, Outcome, error) {
	switch m {
	case MoveMu:
		return k.MoveMu(d, s)
	case MoveTInf:
		return k.MoveTInf(d, s)
	case MoveAlpha:
		return k.MoveAlpha(d, s)
	default:
		return s, Outcome{}, fmt.Errorf("moves: unknown move %q", m)
	}
}

// prepare validates s against d and returns the working copy.
func prepare(m Move, d chain.Data, s chain.State) (chain.State, error) {
	if d == nil {
		return s, fmt.Errorf("move %s: nil data", m)
	}
	if err := s.Validate(d.NumCases()); err != nil {
		return s, fmt.Errorf("move %s: %w", m, err)
	}
	return s.Clone(), nil
}
