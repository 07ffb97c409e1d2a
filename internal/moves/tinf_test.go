package moves

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/rng"
	"github.com/roach88/outbreak/internal/testutil"
)

func TestMoveTInf_Directions(t *testing.T) {
	// direction draw > 0.5 steps up, otherwise down; 0.5 itself steps down.
	src := rng.Uniforms(0.6, 0.0, 0.5, 0.0, 0.1, 0.0)
	k := newKernel(t, testutil.Constant(0), src, Config{})

	got, out, err := k.MoveTInf(testutil.Population(3), chainState(0, []int{0, 1, 2}, chain.None, 1, 2))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0, 1}, got.TInf)
	assert.Equal(t, Outcome{Move: MoveTInf, Proposed: 3, Accepted: 3}, out)
	assert.Equal(t, 0, src.Remaining())
}

func TestMoveTInf_RejectRestores(t *testing.T) {
	eval := likelihood.Funcs{
		TimingFunc: func(_ chain.Data, s chain.State) float64 {
			if s.TInf[0] < 0 {
				return math.Inf(-1)
			}
			return 0
		},
	}
	src := rng.Uniforms(0.1, 0.0, 0.9, 0.0)
	k := newKernel(t, eval, src, Config{})

	got, out, err := k.MoveTInf(testutil.Population(2), chainState(0, []int{0, 5}, chain.None, chain.None))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 6}, got.TInf)
	assert.Equal(t, 1, out.Accepted)
	assert.Equal(t, 2, out.Proposed)
}

func TestMoveTInf_GlobalSequentialRecompute(t *testing.T) {
	ev := testutil.NewCountingEvaluator(testutil.Constant(0))
	src := rng.Uniforms(0.9, 0.0, 0.9, 0.0, 0.9, 0.0)
	k := newKernel(t, ev, src, Config{})

	_, _, err := k.MoveTInf(testutil.Population(3), chainState(0, []int{0, 1, 2}, chain.None, 1, 2))
	require.NoError(t, err)

	calls := ev.Calls()
	require.Len(t, calls, 6)
	for _, c := range calls {
		assert.Equal(t, "timing", c.View)
		assert.Nil(t, c.Only, "timing is never restricted to a case")
	}

	// (old, new) per case; each old sees the previous case's accepted value.
	assert.Equal(t, []int{0, 1, 2}, calls[0].State.TInf)
	assert.Equal(t, []int{1, 1, 2}, calls[1].State.TInf)
	assert.Equal(t, []int{1, 1, 2}, calls[2].State.TInf)
	assert.Equal(t, []int{1, 2, 2}, calls[3].State.TInf)
	assert.Equal(t, []int{1, 2, 2}, calls[4].State.TInf)
	assert.Equal(t, []int{1, 2, 3}, calls[5].State.TInf)
}

func TestMoveTInf_DoesNotTouchAlpha(t *testing.T) {
	k := newKernel(t, testutil.Constant(0), rng.NewSeeded(8), Config{})
	s := chainState(0, []int{0, 1, 2}, chain.None, 1, 2)

	got, _, err := k.MoveTInf(testutil.Population(3), s)
	require.NoError(t, err)
	assert.Equal(t, s.Alpha, got.Alpha)
}

func TestMoveTInf_StepBound(t *testing.T) {
	d := newModelData(t)
	k := newKernel(t, likelihood.Model{}, rng.NewSeeded(31), Config{})
	s := chainState(0.01, []int{0, 1, 2, 3, 4}, chain.None, 1, 1, 2, 3)

	for i := 0; i < 200; i++ {
		next, _, err := k.MoveTInf(d, s)
		require.NoError(t, err)
		for j := range s.TInf {
			diff := next.TInf[j] - s.TInf[j]
			require.Contains(t, []int{-1, 0, 1}, diff, "sweep %d case %d", i, j+1)
		}
		s = next
	}
}

func TestMoveTInf_EveryCaseMovesUnderFlatLikelihood(t *testing.T) {
	k := newKernel(t, testutil.Constant(-3), rng.NewSeeded(12), Config{})
	s := chainState(0, []int{5, 5, 5, 5}, chain.None, chain.None, chain.None, chain.None)

	got, out, err := k.MoveTInf(testutil.Population(4), s)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Accepted)
	for j := range got.TInf {
		assert.Equal(t, 1, abs(got.TInf[j]-5))
	}
}

func TestMoveTInf_SingleCase(t *testing.T) {
	k := newKernel(t, testutil.Constant(0), rng.Uniforms(0.2, 0.5), Config{})

	got, out, err := k.MoveTInf(testutil.Population(1), chainState(0, []int{7}, chain.None))
	require.NoError(t, err)
	assert.Equal(t, []int{6}, got.TInf)
	assert.Equal(t, []chain.Case{chain.None}, got.Alpha)
	assert.Equal(t, 1, out.Proposed)
}

func TestMoveTInf_MonotoneAcceptsUpwardSteps(t *testing.T) {
	// Timing likelihood strictly increasing in every t_inf: upward steps
	// must always be accepted.
	eval := likelihood.Funcs{
		TimingFunc: func(_ chain.Data, s chain.State) float64 {
			total := 0.0
			for _, v := range s.TInf {
				total += float64(v)
			}
			return total
		},
	}

	rec := testutil.NewRecorder(rng.NewSeeded(5))
	k := newKernel(t, eval, rec, Config{})
	s := chainState(0, []int{0, 0, 0}, chain.None, chain.None, chain.None)

	ups := 0
	for trial := 0; trial < 300; trial++ {
		before := rec.Len()
		next, _, err := k.MoveTInf(testutil.Population(3), s)
		require.NoError(t, err)

		draws := rec.Draws()[before:]
		require.Len(t, draws, 6)
		for j := 0; j < 3; j++ {
			if draws[2*j].Value > 0.5 {
				ups++
				require.Equal(t, s.TInf[j]+1, next.TInf[j], "trial %d case %d", trial, j+1)
			}
		}
		s = next
	}
	assert.Greater(t, ups, 300)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
