package likelihood

import (
	"fmt"
	"math"

	"github.com/roach88/outbreak/internal/chain"
)

// Model is the reference Evaluator over *Data.
//
// Genetic: for a case i infected by j, d = Distances[i][j] differing sites
// out of GenomeLength L contribute d*log(mu) + (L-d)*log(1-mu). Rates outside
// (0,1) score -Inf. Without sequences the genetic term is 0.
//
// Timing: a case infected by j contributes log w(t_inf[i] - t_inf[j]); every
// case contributes log f(date[i] - t_inf[i]). Delays outside the support of
// the pmf score -Inf, which covers infectors that are not strictly earlier.
type Model struct{}

var _ Evaluator = Model{}

// Genetic implements Evaluator.
func (Model) Genetic(d chain.Data, s chain.State) float64 {
	data := mustData(d)
	return sumCases(data, s, nil, data.geneticTerm)
}

// Timing implements Evaluator.
func (Model) Timing(d chain.Data, s chain.State) float64 {
	data := mustData(d)
	return sumCases(data, s, nil, data.timingTerm)
}

// Joint implements Evaluator.
func (Model) Joint(d chain.Data, s chain.State, only ...chain.Case) float64 {
	data := mustData(d)
	return sumCases(data, s, only, func(s chain.State, i int) float64 {
		return data.geneticTerm(s, i) + data.timingTerm(s, i)
	})
}

// sumCases adds term over the listed cases, or all cases when only is empty.
// It stops early at -Inf.
func sumCases(d *Data, s chain.State, only []chain.Case, term func(chain.State, int) float64) float64 {
	total := 0.0
	if len(only) == 0 {
		for i := 0; i < d.NumCases(); i++ {
			total += term(s, i)
			if math.IsInf(total, -1) {
				return total
			}
		}
		return total
	}
	for _, c := range only {
		total += term(s, c.Index())
		if math.IsInf(total, -1) {
			return total
		}
	}
	return total
}

func (d *Data) geneticTerm(s chain.State, i int) float64 {
	if d.GenomeLength == 0 {
		return 0
	}
	j := s.Alpha[i]
	if j == chain.None {
		return 0
	}
	if s.Mu <= 0 || s.Mu >= 1 || math.IsNaN(s.Mu) {
		return math.Inf(-1)
	}
	dist := float64(d.Distances[i][j.Index()])
	return dist*math.Log(s.Mu) + (float64(d.GenomeLength)-dist)*math.Log1p(-s.Mu)
}

func (d *Data) timingTerm(s chain.State, i int) float64 {
	ll := logPMF(d.logF, d.Dates[i]-s.TInf[i])
	if j := s.Alpha[i]; j != chain.None {
		ll += logPMF(d.logW, s.TInf[i]-s.TInf[j.Index()])
	}
	return ll
}

func logPMF(logP []float64, delay int) float64 {
	if delay < 1 || delay > len(logP) {
		return math.Inf(-1)
	}
	return logP[delay-1]
}

func mustData(d chain.Data) *Data {
	data, ok := d.(*Data)
	if !ok {
		panic(fmt.Sprintf("likelihood.Model: unsupported data type %T", d))
	}
	return data
}
