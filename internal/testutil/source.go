package testutil

import "sync"

// CyclingSource is a resettable rng.Source for tests.
//
// Uniform draws walk through a fixed pattern and wrap around; Normal draws
// return sd times the next entry of a second pattern. Unlike rng.Script it
// never runs out, which suits statistical tests that only need coverage of
// a known set of values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CyclingSource struct {
	mu       sync.Mutex
	uniforms []float64
	normals  []float64
	ui, ni   int
}

// NewCyclingSource creates a source over the given uniform pattern.
// An empty pattern yields 0.5 forever.
func NewCyclingSource(uniforms ...float64) *CyclingSource {
	if len(uniforms) == 0 {
		uniforms = []float64{0.5}
	}
	return &CyclingSource{uniforms: uniforms, normals: []float64{1}}
}

// WithNormals sets the standard-normal pattern used by Normal.
func (s *CyclingSource) WithNormals(z ...float64) *CyclingSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(z) > 0 {
		s.normals = z
	}
	return s
}

// Uniform returns the next uniform in the pattern.
func (s *CyclingSource) Uniform() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.uniforms[s.ui%len(s.uniforms)]
	s.ui++
	return v
}

// Normal returns sd times the next standard-normal value in the pattern.
func (s *CyclingSource) Normal(sd float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.normals[s.ni%len(s.normals)]
	s.ni++
	return sd * v
}

// Draws returns how many uniform and normal draws were taken.
func (s *CyclingSource) Draws() (uniform, normal int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui, s.ni
}

// Reset rewinds both patterns. After Reset the draw sequence starts over.
func (s *CyclingSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui = 0
	s.ni = 0
}
