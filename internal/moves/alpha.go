package moves

import "github.com/roach88/outbreak/internal/chain"

// MoveAlpha visits cases 1..N in order and redraws the infector of each case
// that has one, uniformly among cases with a strictly earlier infection time.
//
// Roots (Alpha[i] == None) and cases with no earlier case are skipped. The
// current infector may be redrawn. The decision uses the joint log-likelihood
// over the whole population; with Config.LocalRatio the joint restricted to
// case i is also evaluated and reported, but never decides.
//
// Every accepted infector is strictly earlier than its infectee, so the move
// cannot introduce an ordering violation.
func (k *Kernel) MoveAlpha(d chain.Data, s chain.State) (chain.State, Outcome, error) {
	out := Outcome{Move: MoveAlpha}
	next, err := prepare(MoveAlpha, d, s)
	if err != nil {
		return s, out, err
	}

	for i := range next.Alpha {
		c := chain.CaseAt(i)
		if next.Alpha[i] == chain.None {
			out.Skipped++
			continue
		}
		candidate, ok := PickAncestor(next.TInf, c, k.src)
		if !ok {
			out.Skipped++
			continue
		}

		oldLL := k.eval.Joint(d, next)
		var oldLocal float64
		if k.cfg.LocalRatio {
			oldLocal = k.eval.Joint(d, next, c)
		}

		saved := next.Alpha[i]
		next.Alpha[i] = candidate
		newLL := k.eval.Joint(d, next)
		var newLocal float64
		if k.cfg.LocalRatio {
			newLocal = k.eval.Joint(d, next, c)
		}
		out.Proposed++

		accepted := k.decide(oldLL, newLL)
		if k.cfg.LocalRatio {
			out.Local = append(out.Local, LocalRatio{
				Case:     c,
				Full:     newLL - oldLL,
				Local:    newLocal - oldLocal,
				Accepted: accepted,
			})
		}
		if accepted {
			out.Accepted++
		} else {
			next.Alpha[i] = saved
		}
	}
	return next, out, nil
}
