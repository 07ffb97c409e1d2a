package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/outbreak/internal/sampler"
)

// Mismatch is one iteration whose replayed state differs from the stored one.
type Mismatch struct {
	Iteration int    `json:"iter"`
	Stored    string `json:"stored"`
	Replayed  string `json:"replayed"`
}

// ReplayReport compares a stored run with a replay of it.
type ReplayReport struct {
	RunID      string     `json:"run_id"`
	Compared   int        `json:"compared"`
	Missing    []int      `json:"missing,omitempty"`
	Extra      []int      `json:"extra,omitempty"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// OK reports whether the replay reproduced every stored sample exactly.
func (r ReplayReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Mismatches) == 0
}

// FirstDivergence returns the earliest mismatching iteration, or -1.
func (r ReplayReport) FirstDivergence() int {
	if len(r.Mismatches) == 0 {
		return -1
	}
	return r.Mismatches[0].Iteration
}

// Verifier is a sampler.Sink that checks replayed samples against the
// stored samples of a run by state hash.
//
// Verifier is not safe for concurrent use; the sampler writes samples from a
// single goroutine.
type Verifier struct {
	runID  string
	stored map[int]string
	seen   map[int]bool
	report ReplayReport
}

// NewVerifier loads the stored samples of runID.
func (s *Store) NewVerifier(ctx context.Context, runID string) (*Verifier, error) {
	samples, err := s.ReadSamples(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load samples for replay: %w", err)
	}
	stored := make(map[int]string, len(samples))
	for _, sample := range samples {
		stored[sample.Iteration] = sample.StateHash
	}
	return &Verifier{
		runID:  runID,
		stored: stored,
		seen:   make(map[int]bool, len(samples)),
		report: ReplayReport{RunID: runID},
	}, nil
}

// WriteSample implements sampler.Sink.
func (v *Verifier) WriteSample(_ context.Context, sample sampler.Sample) error {
	want, ok := v.stored[sample.Iteration]
	if !ok {
		v.report.Extra = append(v.report.Extra, sample.Iteration)
		return nil
	}
	v.seen[sample.Iteration] = true
	v.report.Compared++
	if want != sample.StateHash {
		v.report.Mismatches = append(v.report.Mismatches, Mismatch{
			Iteration: sample.Iteration,
			Stored:    want,
			Replayed:  sample.StateHash,
		})
	}
	return nil
}

// Report returns the comparison so far. Stored iterations the replay never
// produced are listed as missing.
func (v *Verifier) Report() ReplayReport {
	r := v.report
	r.Missing = nil
	for iter := range v.stored {
		if !v.seen[iter] {
			r.Missing = append(r.Missing, iter)
		}
	}
	slices.Sort(r.Missing)
	return r
}
