package harness

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/trace"
)

// TraceSnapshot captures the step trace of a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	DrawsUsed    int
	Trace        []TraceEvent
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON. Canonical JSON has no floats, so mu is written as its shortest
// decimal string.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		step := map[string]any{
			"step":  event.Step,
			"move":  string(event.Move),
			"mu":    strconv.FormatFloat(event.State.Mu, 'g', -1, 64),
			"t_inf": ints(event.State.TInf),
			"alpha": ints(event.State.Alpha),
		}
		if event.Error != "" {
			step["error"] = event.Error
		} else {
			step["proposed"] = event.Outcome.Proposed
			step["accepted"] = event.Outcome.Accepted
			step["skipped"] = event.Outcome.Skipped
		}
		steps[i] = step
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"draws_used":    s.DrawsUsed,
		"steps":         steps,
	}
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		DrawsUsed:    result.DrawsUsed,
		Trace:        result.Trace,
	}

	traceJSON, err := trace.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}

func ints[T ~int](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = int(x)
	}
	return out
}

func formatState(s chain.State) string {
	return fmt.Sprintf("mu=%s t_inf=%v alpha=%v", strconv.FormatFloat(s.Mu, 'g', -1, 64), s.TInf, s.Alpha)
}
