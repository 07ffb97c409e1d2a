// Package likelihood defines the log-likelihood views consumed by the move
// kernels and ships a reference model for them.
//
// Three views are used:
//   - Genetic: depends on Mu and Alpha (and sequence data)
//   - Timing: depends on TInf and Alpha (and sampling dates)
//   - Joint: the sum of both, optionally restricted to a subset of cases
//
// Evaluators must be pure functions of (data, state). Domain validity is
// expressed through magnitude: an impossible hypothesis scores -Inf rather
// than returning an error.
package likelihood
