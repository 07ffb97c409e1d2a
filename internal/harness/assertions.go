package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/outbreak/internal/chain"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.Error != "" {
			fmt.Fprintf(&buf, "  [%d] %s error: %s\n", event.Step, event.Move, event.Error)
			continue
		}
		fmt.Fprintf(&buf, "  [%d] %s proposed=%d accepted=%d skipped=%d -> %s\n",
			event.Step, event.Move, event.Outcome.Proposed, event.Outcome.Accepted, event.Outcome.Skipped,
			formatState(event.State))
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against a result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalState:
			err = assertFinalState(result, a)
		case AssertDrawsRemaining:
			err = assertDrawsRemaining(result, a)
		case AssertOrderPreserved:
			err = assertOrderPreserved(result)
		case AssertRootsStable:
			err = assertRootsStable(result)
		case AssertUnchanged:
			err = assertUnchanged(result)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}
	return failures
}

func assertFinalState(result *Result, a Assertion) error {
	final := result.Final

	if a.Mu != nil && final.Mu != *a.Mu {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("mu=%v", *a.Mu),
			Actual:   fmt.Sprintf("mu=%v", final.Mu),
			Trace:    result.Trace,
		}
	}

	if a.TInf != nil && !slices.Equal(a.TInf, final.TInf) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("t_inf=%v", a.TInf),
			Actual:   fmt.Sprintf("t_inf=%v", final.TInf),
			Trace:    result.Trace,
		}
	}

	if a.Alpha != nil && !slices.Equal(toCases(a.Alpha), final.Alpha) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("alpha=%v", a.Alpha),
			Actual:   fmt.Sprintf("alpha=%v", final.Alpha),
			Trace:    result.Trace,
		}
	}

	return nil
}

func assertDrawsRemaining(result *Result, a Assertion) error {
	if result.DrawsRemaining != a.Count {
		return &AssertionError{
			Type:     AssertDrawsRemaining,
			Expected: fmt.Sprintf("%d draws left", a.Count),
			Actual:   fmt.Sprintf("%d draws left (%d used)", result.DrawsRemaining, result.DrawsUsed),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertOrderPreserved(result *Result) error {
	if bad := result.Final.OrderViolations(); len(bad) > 0 {
		return &AssertionError{
			Type:     AssertOrderPreserved,
			Expected: "every infector strictly earlier than its infectee",
			Actual:   fmt.Sprintf("violations at cases %v", bad),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertRootsStable(result *Result) error {
	before, after := roots(result.Initial), roots(result.Final)
	if !slices.Equal(before, after) {
		return &AssertionError{
			Type:     AssertRootsStable,
			Expected: fmt.Sprintf("roots %v", before),
			Actual:   fmt.Sprintf("roots %v", after),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertUnchanged(result *Result) error {
	if !chain.Equal(result.Initial, result.Final) {
		return &AssertionError{
			Type:     AssertUnchanged,
			Expected: formatState(result.Initial),
			Actual:   formatState(result.Final),
			Trace:    result.Trace,
		}
	}
	return nil
}

func roots(s chain.State) []chain.Case {
	var out []chain.Case
	for i, a := range s.Alpha {
		if a == chain.None {
			out = append(out, chain.CaseAt(i))
		}
	}
	return out
}
