// Package store provides SQLite-backed durable storage for chain runs.
//
// A run is one execution of the sampler: its seed, the configuration it was
// started with, and the samples it recorded. Samples are append-only and
// keyed by (run_id, iter), so writing the same sample twice is a no-op.
//
// # Ordering
//
// Runs are ordered by created_seq, a logical counter assigned on insert.
// Samples are ordered by iteration. Wall-clock time is never stored, so a
// replayed run produces a byte-identical sample log.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// State hashes are computed by internal/trace, so a stored sample can be
// checked against a replayed one without comparing floats.
package store
