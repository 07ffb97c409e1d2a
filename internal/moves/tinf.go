package moves

import "github.com/roach88/outbreak/internal/chain"

// MoveTInf visits cases 1..N in order and proposes t_inf[i] +/- 1 (each with
// probability 1/2) for every one of them.
//
// Both log-likelihoods are the timing view over the entire state, recomputed
// per case. Case i+1 is evaluated against whatever case i ended up with.
// Alpha is not touched.
func (k *Kernel) MoveTInf(d chain.Data, s chain.State) (chain.State, Outcome, error) {
	out := Outcome{Move: MoveTInf}
	next, err := prepare(MoveTInf, d, s)
	if err != nil {
		return s, out, err
	}

	for i := range next.TInf {
		step := -1
		if k.src.Uniform() > 0.5 {
			step = 1
		}

		oldLL := k.eval.Timing(d, next)
		saved := next.TInf[i]
		next.TInf[i] = saved + step
		newLL := k.eval.Timing(d, next)
		out.Proposed++

		if k.decide(oldLL, newLL) {
			out.Accepted++
		} else {
			next.TInf[i] = saved
		}
	}
	return next, out, nil
}
