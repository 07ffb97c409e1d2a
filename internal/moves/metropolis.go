package moves

import "math"

// Accept is the Metropolis decision for a log-likelihood difference
// delta = new - old and a uniform draw u.
//
//   - delta is NaN: reject (e.g. -Inf - -Inf)
//   - delta is -Inf: reject, even for u == 0
//   - otherwise: accept iff exp(delta) >= u
//
// The inclusive comparison is equivalent to accepting with probability
// min(1, exp(delta)); +Inf always accepts.
func Accept(delta, u float64) bool {
	switch {
	case math.IsNaN(delta):
		return false
	case math.IsInf(delta, -1):
		return false
	}
	return math.Exp(delta) >= u
}

// decide draws the acceptance uniform and applies Accept.
// The draw happens even when the outcome is already determined so the draw
// order never depends on likelihood values.
func (k *Kernel) decide(oldLL, newLL float64) bool {
	u := k.src.Uniform()
	return Accept(newLL-oldLL, u)
}
