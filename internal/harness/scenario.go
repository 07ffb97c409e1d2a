package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/moves"
	"github.com/roach88/outbreak/internal/rng"
)

// Likelihood names.
const (
	LikelihoodFlat   = "flat"
	LikelihoodFrozen = "frozen"
	LikelihoodModel  = "model"
)

// Scenario defines a kernel scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Likelihood is one of flat, frozen or model.
	Likelihood string `yaml:"likelihood"`

	// Cases is the population size for flat and frozen likelihoods.
	Cases int `yaml:"cases,omitempty"`

	// Data is the inline case data for the model likelihood.
	Data *DataSpec `yaml:"data,omitempty"`

	SdMu       float64 `yaml:"sd_mu"`
	LocalRatio bool    `yaml:"local_ratio,omitempty"`

	// State is the starting state.
	State StateSpec `yaml:"state"`

	// Draws is the exact random sequence the steps consume.
	Draws []DrawSpec `yaml:"draws"`

	// Steps are applied in order, each to the previous step's state.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DataSpec is inline case data with its delay pmfs.
type DataSpec struct {
	Cases          []likelihood.CaseRecord `yaml:"cases"`
	GenerationTime []float64               `yaml:"generation_time"`
	Incubation     []float64               `yaml:"incubation"`
}

// StateSpec is a chain state with roots written as 0.
type StateSpec struct {
	Mu    float64 `yaml:"mu"`
	TInf  []int   `yaml:"t_inf"`
	Alpha []int   `yaml:"alpha"`
}

// ChainState converts s to a chain.State.
func (s StateSpec) ChainState() chain.State {
	return chain.State{
		Mu:    s.Mu,
		TInf:  append([]int(nil), s.TInf...),
		Alpha: toCases(s.Alpha),
	}
}

// DrawSpec is one scripted draw. Exactly one field is set.
type DrawSpec struct {
	Uniform *float64 `yaml:"uniform,omitempty"`
	Normal  *float64 `yaml:"normal,omitempty"`
}

// Step applies one move.
type Step struct {
	Move   moves.Move    `yaml:"move"`
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
// Unset counts are not checked.
type ExpectClause struct {
	Proposed *int `yaml:"proposed,omitempty"`
	Accepted *int `yaml:"accepted,omitempty"`
	Skipped  *int `yaml:"skipped,omitempty"`

	// Error is a substring the step's error must contain. Empty means the
	// step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of final_state, draws_remaining, order_preserved,
	// roots_stable or unchanged.
	Type string `yaml:"type"`

	// Mu, TInf and Alpha are used by final_state. Unset fields are not
	// checked.
	Mu    *float64 `yaml:"mu,omitempty"`
	TInf  []int    `yaml:"t_inf,omitempty"`
	Alpha []int    `yaml:"alpha,omitempty"`

	// Count is used by draws_remaining.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState     = "final_state"
	AssertDrawsRemaining = "draws_remaining"
	AssertOrderPreserved = "order_preserved"
	AssertRootsStable    = "roots_stable"
	AssertUnchanged      = "unchanged"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch s.Likelihood {
	case LikelihoodFlat, LikelihoodFrozen:
		if s.Cases <= 0 {
			return fmt.Errorf("cases must be positive for the %s likelihood", s.Likelihood)
		}
	case LikelihoodModel:
		if s.Data == nil || len(s.Data.Cases) == 0 {
			return fmt.Errorf("data is required for the model likelihood")
		}
	default:
		return fmt.Errorf("unknown likelihood %q", s.Likelihood)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		switch step.Move {
		case moves.MoveMu, moves.MoveTInf, moves.MoveAlpha:
		default:
			return fmt.Errorf("step %d: unknown move %q", i+1, step.Move)
		}
	}

	for i, d := range s.Draws {
		if (d.Uniform == nil) == (d.Normal == nil) {
			return fmt.Errorf("draw %d: exactly one of uniform or normal is required", i+1)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertFinalState, AssertDrawsRemaining, AssertOrderPreserved, AssertRootsStable, AssertUnchanged:
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i+1, a.Type)
		}
	}

	return nil
}

// script converts the scenario draws to an rng.Script.
func (s *Scenario) script() *rng.Script {
	draws := make([]rng.Draw, len(s.Draws))
	for i, d := range s.Draws {
		if d.Uniform != nil {
			draws[i] = rng.Draw{Kind: rng.KindUniform, Value: *d.Uniform}
		} else {
			draws[i] = rng.Draw{Kind: rng.KindNormal, Value: *d.Normal}
		}
	}
	return rng.NewScript(draws)
}

func toCases(ids []int) []chain.Case {
	out := make([]chain.Case, len(ids))
	for i, id := range ids {
		out[i] = chain.Case(id)
	}
	return out
}
