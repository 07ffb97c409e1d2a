package likelihood

import "github.com/roach88/outbreak/internal/chain"

// Evaluator computes log-likelihoods of a chain state.
type Evaluator interface {
	// Genetic returns the genetic log-likelihood over all cases.
	Genetic(d chain.Data, s chain.State) float64

	// Timing returns the timing log-likelihood over all cases.
	Timing(d chain.Data, s chain.State) float64

	// Joint returns the full log-likelihood. With no cases given it covers
	// the whole population; otherwise only the listed cases' own terms.
	Joint(d chain.Data, s chain.State, only ...chain.Case) float64
}

// Funcs adapts plain functions to Evaluator. Nil fields contribute 0.
// Joint defaults to GeneticFunc + TimingFunc when JointFunc is nil, ignoring
// the subset.
type Funcs struct {
	GeneticFunc func(d chain.Data, s chain.State) float64
	TimingFunc  func(d chain.Data, s chain.State) float64
	JointFunc   func(d chain.Data, s chain.State, only []chain.Case) float64
}

// Genetic implements Evaluator.
func (f Funcs) Genetic(d chain.Data, s chain.State) float64 {
	if f.GeneticFunc == nil {
		return 0
	}
	return f.GeneticFunc(d, s)
}

// Timing implements Evaluator.
func (f Funcs) Timing(d chain.Data, s chain.State) float64 {
	if f.TimingFunc == nil {
		return 0
	}
	return f.TimingFunc(d, s)
}

// Joint implements Evaluator.
func (f Funcs) Joint(d chain.Data, s chain.State, only ...chain.Case) float64 {
	if f.JointFunc != nil {
		return f.JointFunc(d, s, only)
	}
	return f.Genetic(d, s) + f.Timing(d, s)
}
