// Package moves implements the Metropolis kernels that update a chain state.
//
// Three kernels share one acceptance rule (Accept):
//   - MoveMu: normal random walk on the mutation rate, genetic likelihood only
//   - MoveTInf: +/-1 step on each case's infection time, in case order
//   - MoveAlpha: uniform redraw of each case's infector among strictly
//     earlier cases, in case order
//
// # Determinism
//
// Kernels consume their Source in a fixed order:
//
//	MoveMu:    Normal, Uniform
//	MoveTInf:  per case: Uniform (direction), Uniform (acceptance)
//	MoveAlpha: per eligible case: Uniform (candidate), Uniform (acceptance)
//
// The same state, data and draws always give a bit-identical result.
//
// # State Handling
//
// Each kernel clones the incoming state once, then proposes in place and
// restores a single saved value on rejection. Every likelihood call therefore
// sees a complete pre- or post-proposal hypothesis. The caller's state is
// never mutated.
//
// # Likelihood Scoping
//
// MoveTInf recomputes the timing likelihood over the whole population for
// every case, and MoveAlpha decides on the whole-population joint ratio.
// Narrowing either changes the acceptance ratio, so neither is restricted to
// a case and its descendants.
package moves
