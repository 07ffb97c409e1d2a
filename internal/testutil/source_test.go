package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/outbreak/internal/chain"
)

func TestCyclingSource_Wraps(t *testing.T) {
	s := NewCyclingSource(0.1, 0.9)

	assert.Equal(t, 0.1, s.Uniform())
	assert.Equal(t, 0.9, s.Uniform())
	assert.Equal(t, 0.1, s.Uniform())
}

func TestCyclingSource_DefaultPattern(t *testing.T) {
	s := NewCyclingSource()
	assert.Equal(t, 0.5, s.Uniform())
	assert.Equal(t, 2.0, s.Normal(2))
}

func TestCyclingSource_Normals(t *testing.T) {
	s := NewCyclingSource().WithNormals(1, -1)
	assert.Equal(t, 0.5, s.Normal(0.5))
	assert.Equal(t, -0.5, s.Normal(0.5))
	assert.Equal(t, 0.0, s.Normal(0))
}

func TestCyclingSource_Reset(t *testing.T) {
	s := NewCyclingSource(0.2, 0.4)
	s.Uniform()
	s.Normal(1)
	u, n := s.Draws()
	assert.Equal(t, 1, u)
	assert.Equal(t, 1, n)

	s.Reset()
	assert.Equal(t, 0.2, s.Uniform())
}

func TestCyclingSource_ThreadSafe(t *testing.T) {
	s := NewCyclingSource(0.3)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Uniform()
			}
		}()
	}
	wg.Wait()

	u, _ := s.Draws()
	assert.Equal(t, 1000, u)
}

func TestCountingEvaluator_Records(t *testing.T) {
	ev := NewCountingEvaluator(Constant(-2))
	st := chain.State{Mu: 0.1, TInf: []int{0}, Alpha: []chain.Case{chain.None}}

	assert.Equal(t, -2.0, ev.Genetic(Population(1), st))
	assert.Equal(t, -2.0, ev.Joint(Population(1), st, 1))

	// Mutating the caller's state does not change the record.
	st.TInf[0] = 9

	calls := ev.Calls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "genetic", calls[0].View)
	assert.Equal(t, []int{0}, calls[0].State.TInf)
	assert.Equal(t, []chain.Case{1}, calls[1].Only)
	assert.Equal(t, 1, ev.Count("joint"))
	assert.Equal(t, 0, ev.Count("timing"))
}
