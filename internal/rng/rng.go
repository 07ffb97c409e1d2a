// Package rng provides the random sources consumed by the move kernels.
//
// Every kernel draws from a Source in a fixed order, so two runs that start
// from the same state with the same draws produce bit-identical states.
// Seeded wraps a PCG generator behind gonum distributions; Script replays
// a fixed list of draws for determinism checks.
package rng

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source produces independent draws.
type Source interface {
	// Uniform returns a draw from U(0,1).
	Uniform() float64

	// Normal returns a draw from N(0, sd).
	Normal(sd float64) float64
}

// pcgStream is the fixed PCG stream selector. Changing it changes every
// seeded trajectory.
const pcgStream = 0x6f7574627265616b

// Seeded is a reproducible Source backed by a PCG generator.
// Not safe for concurrent use.
type Seeded struct {
	seed    uint64
	uniform distuv.Uniform
	normal  distuv.Normal
}

// NewSeeded creates a Seeded source. Equal seeds give equal draw sequences.
func NewSeeded(seed uint64) *Seeded {
	src := rand.NewPCG(seed, pcgStream)
	return &Seeded{
		seed:    seed,
		uniform: distuv.Uniform{Min: 0, Max: 1, Src: src},
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() uint64 {
	return s.seed
}

// Uniform implements Source.
func (s *Seeded) Uniform() float64 {
	return s.uniform.Rand()
}

// Normal implements Source. A zero sd always yields 0.
func (s *Seeded) Normal(sd float64) float64 {
	return sd * s.normal.Rand()
}

// DrawKind distinguishes the two kinds of draw.
type DrawKind string

const (
	KindUniform DrawKind = "uniform"
	KindNormal  DrawKind = "normal"
)

// Draw is a single recorded draw.
type Draw struct {
	Kind  DrawKind `json:"kind"`
	Value float64  `json:"value"`
}

// ErrExhausted is the panic value cause when a Script runs out of draws.
var ErrExhausted = errors.New("rng: script exhausted")

// ErrKindMismatch is the panic value cause when a Script is asked for a
// different kind of draw than it recorded.
var ErrKindMismatch = errors.New("rng: draw kind mismatch")

// Script replays a fixed sequence of draws.
//
// Normal draws are stored as values already scaled by sd; the sd passed at
// replay time is ignored. Script panics when exhausted or when the requested
// kind differs from the recorded one, since either means the caller's draw
// order has diverged.
type Script struct {
	draws []Draw
	next  int
}

// NewScript creates a Script over draws.
func NewScript(draws []Draw) *Script {
	d := make([]Draw, len(draws))
	copy(d, draws)
	return &Script{draws: d}
}

// Uniforms builds a Script of uniform draws.
func Uniforms(values ...float64) *Script {
	draws := make([]Draw, len(values))
	for i, v := range values {
		draws[i] = Draw{Kind: KindUniform, Value: v}
	}
	return &Script{draws: draws}
}

// Uniform implements Source.
func (s *Script) Uniform() float64 {
	return s.take(KindUniform)
}

// Normal implements Source.
func (s *Script) Normal(float64) float64 {
	return s.take(KindNormal)
}

// Remaining returns the number of draws not yet consumed.
func (s *Script) Remaining() int {
	return len(s.draws) - s.next
}

func (s *Script) take(kind DrawKind) float64 {
	if s.next >= len(s.draws) {
		panic(fmt.Errorf("%w after %d draws", ErrExhausted, s.next))
	}
	d := s.draws[s.next]
	if d.Kind != kind {
		panic(fmt.Errorf("%w at draw %d: recorded %s, requested %s", ErrKindMismatch, s.next, d.Kind, kind))
	}
	s.next++
	return d.Value
}
