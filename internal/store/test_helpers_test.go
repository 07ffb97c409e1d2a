package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/sampler"
	"github.com/roach88/outbreak/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun inserts a run with a fixed configuration.
func createTestRun(t *testing.T, s *Store, seed uint64) Run {
	t.Helper()
	run, err := s.CreateRun(context.Background(), seed, []byte(`{"iterations":10}`), "")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	return run
}

// createTestSample builds a hashed sample of a three-case chain.
func createTestSample(iter int, mu float64) sampler.Sample {
	state := chain.State{
		Mu:    mu,
		TInf:  []int{0, iter, iter + 1},
		Alpha: []chain.Case{chain.None, 1, 2},
	}
	return sampler.Sample{
		Iteration:     iter,
		LogLikelihood: -float64(iter),
		State:         state,
		StateHash:     testutil.MustStateHash(state),
	}
}
