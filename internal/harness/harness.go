package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/moves"
	"github.com/roach88/outbreak/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// The returned error covers problems with the scenario itself (bad data,
// invalid kernel settings). Failed expectations and assertions are reported
// in Result.Errors with Pass set to false.
func Run(scenario *Scenario) (*Result, error) {
	data, err := scenarioData(scenario)
	if err != nil {
		return nil, err
	}

	initial := scenario.State.ChainState()
	eval := scenarioLikelihood(scenario.Likelihood, initial)

	script := scenario.script()
	kernel, err := moves.New(eval, script, moves.Config{
		SdMu:       scenario.SdMu,
		LocalRatio: scenario.LocalRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Initial = initial.Clone()

	state := initial.Clone()
	for i, step := range scenario.Steps {
		next, out, stepErr := applyStep(kernel, step.Move, data, state)

		event := TraceEvent{Step: i + 1, Move: step.Move, Outcome: out, State: next.Clone()}
		if stepErr != nil {
			event.Error = stepErr.Error()
		}
		result.Trace = append(result.Trace, event)

		checkExpect(result, event, step.Expect)
		state = next
	}

	result.Final = state
	result.DrawsRemaining = script.Remaining()
	result.DrawsUsed = len(scenario.Draws) - result.DrawsRemaining

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// applyStep runs one kernel call. A Script panics when the kernel's draw
// order departs from the scripted one; that becomes the step's error.
func applyStep(k *moves.Kernel, m moves.Move, d chain.Data, s chain.State) (next chain.State, out moves.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = s
			out = moves.Outcome{Move: m}
			err = fmt.Errorf("draw sequence: %v", r)
		}
	}()
	return k.Apply(m, d, s)
}

func checkExpect(result *Result, event TraceEvent, expect *ExpectClause) {
	if expect == nil {
		if event.Error != "" {
			result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %s", event.Step, event.Move, event.Error))
		}
		return
	}

	switch {
	case expect.Error == "" && event.Error != "":
		result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %s", event.Step, event.Move, event.Error))
		return
	case expect.Error != "" && event.Error == "":
		result.AddError(fmt.Sprintf("step %d (%s): expected error containing %q, got success", event.Step, event.Move, expect.Error))
		return
	case expect.Error != "":
		if !strings.Contains(event.Error, expect.Error) {
			result.AddError(fmt.Sprintf("step %d (%s): expected error containing %q, got %q", event.Step, event.Move, expect.Error, event.Error))
		}
		return
	}

	checkCount(result, event, "proposed", expect.Proposed, event.Outcome.Proposed)
	checkCount(result, event, "accepted", expect.Accepted, event.Outcome.Accepted)
	checkCount(result, event, "skipped", expect.Skipped, event.Outcome.Skipped)
}

func checkCount(result *Result, event TraceEvent, name string, want *int, got int) {
	if want != nil && *want != got {
		result.AddError(fmt.Sprintf("step %d (%s): %s = %d, want %d", event.Step, event.Move, name, got, *want))
	}
}

// scenarioData builds the chain.Data the kernels run against.
func scenarioData(s *Scenario) (chain.Data, error) {
	if s.Likelihood != LikelihoodModel {
		return testutil.Population(s.Cases), nil
	}
	d, err := likelihood.NewData(s.Data.Cases, s.Data.GenerationTime, s.Data.Incubation)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: data: %w", s.Name, err)
	}
	return d, nil
}

func scenarioLikelihood(name string, initial chain.State) likelihood.Evaluator {
	switch name {
	case LikelihoodFrozen:
		return frozen(initial)
	case LikelihoodModel:
		return likelihood.Model{}
	default:
		return testutil.Constant(0)
	}
}

// frozen scores the starting state 0 and everything else -Inf.
func frozen(initial chain.State) likelihood.Funcs {
	score := func(s chain.State) float64 {
		if chain.Equal(s, initial) {
			return 0
		}
		return math.Inf(-1)
	}
	return likelihood.Funcs{
		GeneticFunc: func(_ chain.Data, s chain.State) float64 { return score(s) },
		TimingFunc:  func(_ chain.Data, s chain.State) float64 { return score(s) },
		JointFunc:   func(_ chain.Data, s chain.State, _ []chain.Case) float64 { return score(s) },
	}
}
