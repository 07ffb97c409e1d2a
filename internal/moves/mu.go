package moves

import "github.com/roach88/outbreak/internal/chain"

// MoveMu proposes mu' = mu + N(0, SdMu) and accepts on the genetic
// log-likelihood ratio. Only the genetic view depends on mu.
//
// No bound is placed on mu'; a degenerate rate is rejected through the
// likelihood. When the candidate equals the current value (SdMu == 0) the
// state is returned unchanged and the likelihood is not evaluated, but the
// acceptance draw is still consumed.
func (k *Kernel) MoveMu(d chain.Data, s chain.State) (chain.State, Outcome, error) {
	out := Outcome{Move: MoveMu}
	next, err := prepare(MoveMu, d, s)
	if err != nil {
		return s, out, err
	}

	current := next.Mu
	candidate := current + k.src.Normal(k.cfg.SdMu)
	out.Proposed = 1

	if candidate == current {
		k.src.Uniform()
		out.Accepted = 1
		return next, out, nil
	}

	oldLL := k.eval.Genetic(d, next)
	next.Mu = candidate
	newLL := k.eval.Genetic(d, next)

	if k.decide(oldLL, newLL) {
		out.Accepted = 1
	} else {
		next.Mu = current
	}
	return next, out, nil
}
