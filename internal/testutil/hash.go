package testutil

import (
	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/trace"
)

// MustStateHash is trace.StateHash for fixtures. It panics on error, which
// StateObject's output cannot trigger.
func MustStateHash(s chain.State) string {
	h, err := trace.StateHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
