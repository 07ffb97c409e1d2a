// Package config loads and validates chain run configuration.
//
// A run is described by a YAML or CUE file. Both formats decode into Run,
// start from the same defaults and end in Run.Validate. CUE files are
// additionally checked against an embedded schema before decoding.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/outbreak/internal/likelihood"
	"github.com/roach88/outbreak/internal/moves"
	"github.com/roach88/outbreak/internal/trace"
)

// Run is the configuration of one chain run.
type Run struct {
	// Data is the path of the case file. Load resolves relative paths against
	// the directory of the configuration file and makes them absolute.
	Data string `yaml:"data" json:"data"`

	Iterations  int    `yaml:"iterations" json:"iterations"`
	SampleEvery int    `yaml:"sample_every" json:"sample_every"`
	LogEvery    int    `yaml:"log_every" json:"log_every"`
	Seed        uint64 `yaml:"seed" json:"seed"`

	InitMu float64 `yaml:"init_mu" json:"init_mu"`
	SdMu   float64 `yaml:"sd_mu" json:"sd_mu"`

	Moves      MoveSet `yaml:"moves" json:"moves"`
	LocalRatio bool    `yaml:"local_ratio" json:"local_ratio"`

	GenerationTime Distribution `yaml:"generation_time" json:"generation_time"`
	Incubation     Distribution `yaml:"incubation" json:"incubation"`
}

// MoveSet toggles the kernels. All are enabled by default.
type MoveSet struct {
	Mu    bool `yaml:"mu" json:"mu"`
	TInf  bool `yaml:"t_inf" json:"t_inf"`
	Alpha bool `yaml:"alpha" json:"alpha"`
}

// Enabled lists the enabled kernels in sweep order.
func (m MoveSet) Enabled() []moves.Move {
	var out []moves.Move
	if m.Mu {
		out = append(out, moves.MoveMu)
	}
	if m.TInf {
		out = append(out, moves.MoveTInf)
	}
	if m.Alpha {
		out = append(out, moves.MoveAlpha)
	}
	return out
}

// Distribution is a delay distribution given either as an explicit pmf over
// delays 1..len(pmf) or as a gamma distribution to discretize.
type Distribution struct {
	PMF   []float64 `yaml:"pmf,omitempty" json:"pmf,omitempty"`
	Gamma *Gamma    `yaml:"gamma,omitempty" json:"gamma,omitempty"`
}

// Gamma parameterizes a discretized gamma distribution.
type Gamma struct {
	Shape    float64 `yaml:"shape" json:"shape"`
	Rate     float64 `yaml:"rate" json:"rate"`
	MaxDelay int     `yaml:"max_delay" json:"max_delay"`
}

// Build returns the normalized pmf.
func (d Distribution) Build() ([]float64, error) {
	if d.Gamma != nil {
		return likelihood.Discretize(d.Gamma.Shape, d.Gamma.Rate, d.Gamma.MaxDelay)
	}
	p := make([]float64, len(d.PMF))
	copy(p, d.PMF)
	return likelihood.Normalize(p)
}

// Default returns a Run with every optional field at its default.
func Default() Run {
	return Run{
		Iterations:  10000,
		SampleEvery: 50,
		LogEvery:    1000,
		Seed:        1,
		InitMu:      1e-4,
		SdMu:        1e-4,
		Moves:       MoveSet{Mu: true, TInf: true, Alpha: true},
	}
}

// Load reads a configuration file. The format is chosen by extension:
// .cue for CUE, anything else is parsed as YAML.
func Load(path string) (Run, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Run{}, &Error{Code: ErrCodeRead, Message: fmt.Sprintf("failed to read config file: %v", err)}
	}

	var run Run
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		run, err = ParseCUE(raw, path)
	default:
		run, err = ParseYAML(raw)
	}
	if err != nil {
		return Run{}, err
	}

	// The stored config must name the case file independently of the
	// working directory, so replay works from anywhere.
	if !filepath.IsAbs(run.Data) {
		run.Data = filepath.Join(filepath.Dir(path), run.Data)
	}
	abs, err := filepath.Abs(run.Data)
	if err != nil {
		return Run{}, &Error{Code: ErrCodeRead, Field: "data", Message: fmt.Sprintf("failed to resolve data path: %v", err)}
	}
	run.Data = abs
	return run, nil
}

// ParseYAML decodes a YAML configuration over the defaults and validates it.
// Unknown fields are rejected.
func ParseYAML(raw []byte) (Run, error) {
	run := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&run); err != nil {
		return Run{}, &Error{Code: ErrCodeParse, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	if err := run.Validate(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Encode serializes the configuration deterministically. The result is what
// the store keeps for replay.
func (r Run) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// Decode parses a configuration produced by Encode.
func Decode(raw []byte) (Run, error) {
	run := Default()
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&run); err != nil {
		return Run{}, &Error{Code: ErrCodeParse, Message: fmt.Sprintf("failed to decode stored config: %v", err)}
	}
	if err := run.Validate(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Validate checks field ranges and the delay distributions.
func (r Run) Validate() error {
	switch {
	case strings.TrimSpace(r.Data) == "":
		return invalid("data", "data path is required")
	case r.Iterations <= 0:
		return invalid("iterations", fmt.Sprintf("must be positive, got %d", r.Iterations))
	case r.SampleEvery <= 0:
		return invalid("sample_every", fmt.Sprintf("must be positive, got %d", r.SampleEvery))
	case r.LogEvery < 0:
		return invalid("log_every", fmt.Sprintf("must not be negative, got %d", r.LogEvery))
	case !(r.InitMu > 0 && r.InitMu < 1):
		return invalid("init_mu", fmt.Sprintf("must be in (0, 1), got %v", r.InitMu))
	case math.IsNaN(r.SdMu) || math.IsInf(r.SdMu, 0) || r.SdMu < 0:
		return invalid("sd_mu", fmt.Sprintf("must be finite and not negative, got %v", r.SdMu))
	case len(r.Moves.Enabled()) == 0:
		return invalid("moves", "at least one move must be enabled")
	}

	if err := validateDistribution("generation_time", r.GenerationTime); err != nil {
		return err
	}
	return validateDistribution("incubation", r.Incubation)
}

func validateDistribution(field string, d Distribution) error {
	switch {
	case d.Gamma != nil && len(d.PMF) > 0:
		return invalid(field, "give either pmf or gamma, not both")
	case d.Gamma == nil && len(d.PMF) == 0:
		return invalid(field, "pmf or gamma is required")
	}
	if _, err := d.Build(); err != nil {
		return invalid(field, err.Error())
	}
	return nil
}

// KernelConfig returns the move kernel settings.
func (r Run) KernelConfig() moves.Config {
	return moves.Config{SdMu: r.SdMu, LocalRatio: r.LocalRatio}
}

// LoadData builds both delay distributions and reads the case file.
func (r Run) LoadData() (*likelihood.Data, error) {
	w, err := r.GenerationTime.Build()
	if err != nil {
		return nil, invalid("generation_time", err.Error())
	}
	f, err := r.Incubation.Build()
	if err != nil {
		return nil, invalid("incubation", err.Error())
	}
	return likelihood.LoadData(r.Data, w, f)
}

// DataHash returns the content hash of the case file. A run records it so
// replay can tell when the file has changed underneath it.
func (r Run) DataHash() (string, error) {
	raw, err := os.ReadFile(r.Data)
	if err != nil {
		return "", fmt.Errorf("read case file: %w", err)
	}
	return trace.DataHash(raw), nil
}
