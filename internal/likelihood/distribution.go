package likelihood

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Discretize turns a gamma distribution (shape, rate) into a pmf over delays
// 1..maxDelay. Delay k receives the mass of the interval (k-1, k]; the result
// is renormalized to sum to one.
func Discretize(shape, rate float64, maxDelay int) ([]float64, error) {
	if shape <= 0 || rate <= 0 {
		return nil, fmt.Errorf("gamma parameters must be positive (shape=%v, rate=%v)", shape, rate)
	}
	if maxDelay < 1 {
		return nil, fmt.Errorf("max delay must be >= 1, got %d", maxDelay)
	}

	g := distuv.Gamma{Alpha: shape, Beta: rate}
	p := make([]float64, maxDelay)
	for k := 1; k <= maxDelay; k++ {
		p[k-1] = g.CDF(float64(k)) - g.CDF(float64(k-1))
	}
	return Normalize(p)
}

// Normalize scales p in place to sum to one and returns it.
func Normalize(p []float64) ([]float64, error) {
	total := floats.Sum(p)
	if total <= 0 {
		return nil, fmt.Errorf("distribution has no mass")
	}
	floats.Scale(1/total, p)
	return p, nil
}

// Mode returns the delay (1-based) with the highest mass in p.
// Ties resolve to the shortest delay.
func Mode(p []float64) int {
	if len(p) == 0 {
		return 0
	}
	return floats.MaxIdx(p) + 1
}
