package chain

import "fmt"

// Case identifies a case in the outbreak, 1-based.
// The zero value is None.
type Case int

// None marks a case with no known infector (a root of the forest).
const None Case = 0

// Index returns the 0-based slice index for c.
// Calling Index on None returns -1.
func (c Case) Index() int {
	return int(c) - 1
}

// IsNone reports whether c is the "no infector" marker.
func (c Case) IsNone() bool {
	return c == None
}

// String renders the case id, or "-" for None.
func (c Case) String() string {
	if c == None {
		return "-"
	}
	return fmt.Sprintf("%d", int(c))
}

// CaseAt converts a 0-based slice index into a Case.
func CaseAt(index int) Case {
	return Case(index + 1)
}

// Data is the read-only view of observed data that the move kernels need.
// Everything else about the data is opaque and belongs to the likelihood.
type Data interface {
	// NumCases returns N, the size of the case population.
	NumCases() int
}

// State is one hypothesis of the chain.
type State struct {
	// Mu is the mutation rate per unit time. No bound is enforced here.
	Mu float64 `json:"mu"`

	// TInf holds the infection time of case i at index i-1.
	TInf []int `json:"t_inf"`

	// Alpha holds the infector of case i at index i-1, or None.
	Alpha []Case `json:"alpha"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{Mu: s.Mu}
	if s.TInf != nil {
		out.TInf = make([]int, len(s.TInf))
		copy(out.TInf, s.TInf)
	}
	if s.Alpha != nil {
		out.Alpha = make([]Case, len(s.Alpha))
		copy(out.Alpha, s.Alpha)
	}
	return out
}

// Len returns the number of cases described by s.
func (s State) Len() int {
	return len(s.TInf)
}

// InfectionTime returns the infection time of case c.
func (s State) InfectionTime(c Case) int {
	return s.TInf[c.Index()]
}

// Infector returns the infector of case c.
func (s State) Infector(c Case) Case {
	return s.Alpha[c.Index()]
}

// Equal reports whether a and b are bit-identical hypotheses.
func Equal(a, b State) bool {
	if a.Mu != b.Mu || len(a.TInf) != len(b.TInf) || len(a.Alpha) != len(b.Alpha) {
		return false
	}
	for i := range a.TInf {
		if a.TInf[i] != b.TInf[i] {
			return false
		}
	}
	for i := range a.Alpha {
		if a.Alpha[i] != b.Alpha[i] {
			return false
		}
	}
	return true
}

// Validate checks that s is structurally usable for a population of n cases:
// slice lengths match n, every infector is None or in 1..n, and no case
// infects itself.
//
// Validate does NOT check the ordering invariant. A state whose infection
// times were shifted past its infectors is still a legal chain state; it is
// the likelihood's job to score it.
func (s State) Validate(n int) error {
	if n < 0 {
		return NewLengthError("population", n, 0)
	}
	if len(s.TInf) != n {
		return NewLengthError("t_inf", len(s.TInf), n)
	}
	if len(s.Alpha) != n {
		return NewLengthError("alpha", len(s.Alpha), n)
	}
	for i, a := range s.Alpha {
		if a < None || int(a) > n {
			return NewRangeError(CaseAt(i), a, n)
		}
		if a == CaseAt(i) {
			return NewSelfInfectionError(a)
		}
	}
	return nil
}

// OrderViolations returns every case whose infector is not strictly earlier.
// An empty result means the ordering invariant holds.
func (s State) OrderViolations() []Case {
	var bad []Case
	for i, a := range s.Alpha {
		if a == None {
			continue
		}
		if a == CaseAt(i) || s.TInf[a.Index()] >= s.TInf[i] {
			bad = append(bad, CaseAt(i))
		}
	}
	return bad
}
