package sampler

import (
	"cmp"
	"slices"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/likelihood"
)

// Init builds a starting state from the observed data.
//
// Every case is placed at its sampling date minus the most likely incubation
// delay. Its infector is the closest strictly earlier case, taking the lowest
// case number among ties; the earliest cases are roots.
func Init(d *likelihood.Data, mu float64) chain.State {
	n := d.NumCases()
	s := chain.State{
		Mu:    mu,
		TInf:  make([]int, n),
		Alpha: make([]chain.Case, n),
	}
	for i, date := range d.Dates {
		s.TInf[i] = date - d.IncubationMode
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(s.TInf[a], s.TInf[b])
	})

	for pos, i := range order {
		k := pos - 1
		for k >= 0 && s.TInf[order[k]] == s.TInf[i] {
			k--
		}
		if k < 0 {
			s.Alpha[i] = chain.None
			continue
		}
		// Walk back to the first case of that time group.
		for k > 0 && s.TInf[order[k-1]] == s.TInf[order[k]] {
			k--
		}
		s.Alpha[i] = chain.CaseAt(order[k])
	}
	return s
}
