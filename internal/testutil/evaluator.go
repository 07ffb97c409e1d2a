package testutil

import (
	"sync"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/likelihood"
)

// Population is a chain.Data with nothing but a case count.
type Population int

// NumCases implements chain.Data.
func (p Population) NumCases() int {
	return int(p)
}

// Constant returns an evaluator whose every view scores v.
// With a finite v every proposal has delta 0 and is accepted.
func Constant(v float64) likelihood.Funcs {
	return likelihood.Funcs{
		GeneticFunc: func(chain.Data, chain.State) float64 { return v },
		TimingFunc:  func(chain.Data, chain.State) float64 { return v },
		JointFunc:   func(chain.Data, chain.State, []chain.Case) float64 { return v },
	}
}

// Call records one evaluator invocation.
type Call struct {
	View  string
	State chain.State
	Only  []chain.Case
}

// CountingEvaluator wraps an Evaluator and records every call with a copy of
// the state it was shown.
type CountingEvaluator struct {
	Inner likelihood.Evaluator

	mu    sync.Mutex
	calls []Call
}

// NewCountingEvaluator wraps inner.
func NewCountingEvaluator(inner likelihood.Evaluator) *CountingEvaluator {
	return &CountingEvaluator{Inner: inner}
}

// Genetic implements likelihood.Evaluator.
func (c *CountingEvaluator) Genetic(d chain.Data, s chain.State) float64 {
	c.record("genetic", s, nil)
	return c.Inner.Genetic(d, s)
}

// Timing implements likelihood.Evaluator.
func (c *CountingEvaluator) Timing(d chain.Data, s chain.State) float64 {
	c.record("timing", s, nil)
	return c.Inner.Timing(d, s)
}

// Joint implements likelihood.Evaluator.
func (c *CountingEvaluator) Joint(d chain.Data, s chain.State, only ...chain.Case) float64 {
	c.record("joint", s, only)
	return c.Inner.Joint(d, s, only...)
}

// Calls returns every recorded call in order.
func (c *CountingEvaluator) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Count returns the number of calls to the given view.
func (c *CountingEvaluator) Count(view string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.View == view {
			n++
		}
	}
	return n
}

func (c *CountingEvaluator) record(view string, s chain.State, only []chain.Case) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var o []chain.Case
	if len(only) > 0 {
		o = append(o, only...)
	}
	c.calls = append(c.calls, Call{View: view, State: s.Clone(), Only: o})
}
