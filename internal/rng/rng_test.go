package rng

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeded_SameSeedSameDraws(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uniform(), b.Uniform())
		require.Equal(t, a.Normal(0.3), b.Normal(0.3))
	}
}

func TestSeeded_DifferentSeeds(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)

	same := 0
	for i := 0; i < 20; i++ {
		if a.Uniform() == b.Uniform() {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestSeeded_UniformRange(t *testing.T) {
	s := NewSeeded(7)
	for i := 0; i < 10000; i++ {
		u := s.Uniform()
		require.GreaterOrEqual(t, u, 0.0)
		require.Less(t, u, 1.0)
	}
}

func TestSeeded_NormalZeroScale(t *testing.T) {
	s := NewSeeded(7)
	for i := 0; i < 100; i++ {
		require.Equal(t, 0.0, s.Normal(0))
	}
}

func TestSeeded_NormalMoments(t *testing.T) {
	s := NewSeeded(11)
	const n = 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := s.Normal(2)
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	assert.InDelta(t, 0, mean, 0.1)
	assert.InDelta(t, 4, variance, 0.3)
}

func TestSeeded_Seed(t *testing.T) {
	assert.Equal(t, uint64(99), NewSeeded(99).Seed())
}

func TestScript_Exhausted(t *testing.T) {
	s := Uniforms(0.5)
	s.Uniform()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrExhausted))
	}()
	s.Uniform()
}

func TestScript_KindMismatch(t *testing.T) {
	s := Uniforms(0.5)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrKindMismatch))
	}()
	s.Normal(1)
}
