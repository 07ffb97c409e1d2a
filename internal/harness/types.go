package harness

import (
	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/moves"
)

// TraceEvent records one applied step.
type TraceEvent struct {
	Step    int           `json:"step"`
	Move    moves.Move    `json:"move"`
	Outcome moves.Outcome `json:"outcome"`

	// State is the state after the step. On error it is the state the step
	// was given.
	State chain.State `json:"state"`

	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Initial chain.State `json:"initial"`
	Final   chain.State `json:"final"`

	// DrawsUsed and DrawsRemaining split the scripted draws.
	DrawsUsed      int `json:"draws_used"`
	DrawsRemaining int `json:"draws_remaining"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
