// Package sampler runs the Metropolis chain: it builds a starting state from
// the observed data, applies the move kernels sweep after sweep and hands
// thinned samples to a Sink.
//
// A run is fully determined by its starting state, the data, the kernel
// configuration and the random source. Cancellation is only observed between
// sweeps, so a cancelled run always stops on a complete state.
package sampler
