// Package chain defines the mutable state of an outbreak reconstruction chain.
//
// A State holds one hypothesis about the outbreak:
//   - Mu: genome mutation rate per unit time
//   - TInf: one infection time per case
//   - Alpha: one inferred infector per case (None for roots)
//
// # Case Identifiers
//
// Cases are identified 1..N everywhere a Case value is visible. Slices are
// indexed 0..N-1, so case i lives at index i-1. Use Case.Index to convert.
//
// # Ordering Invariant
//
// For every case i with Alpha[i] = j != None, TInf[j] < TInf[i] and j != i.
// Together these make the infector relation a forest.
//
// States are passed by value between the sampler and the move kernels.
// Slices are shared by plain assignment, so a kernel that mutates a state
// must Clone it first.
package chain
