package moves

import (
	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/rng"
)

// Candidates returns every case j != c with tInf[j] < tInf[c], in increasing
// case order.
func Candidates(tInf []int, c chain.Case) []chain.Case {
	var out []chain.Case
	ti := tInf[c.Index()]
	for j, t := range tInf {
		if t < ti && chain.CaseAt(j) != c {
			out = append(out, chain.CaseAt(j))
		}
	}
	return out
}

// countCandidates is len(Candidates(tInf, c)) without allocating.
func countCandidates(tInf []int, c chain.Case) int {
	n := 0
	ti := tInf[c.Index()]
	for j, t := range tInf {
		if t < ti && chain.CaseAt(j) != c {
			n++
		}
	}
	return n
}

// PickAncestor draws a case uniformly from Candidates(tInf, c).
//
// It reports false, without consuming a draw, when there is no candidate.
// Otherwise it consumes exactly one uniform: the k-th candidate in case order
// is chosen with k = floor(u * count).
func PickAncestor(tInf []int, c chain.Case, src rng.Source) (chain.Case, bool) {
	n := countCandidates(tInf, c)
	if n == 0 {
		return chain.None, false
	}

	k := int(src.Uniform() * float64(n))
	if k >= n {
		k = n - 1
	}

	ti := tInf[c.Index()]
	for j, t := range tInf {
		if t < ti && chain.CaseAt(j) != c {
			if k == 0 {
				return chain.CaseAt(j), true
			}
			k--
		}
	}
	// unreachable: k < n candidates exist
	return chain.None, false
}
