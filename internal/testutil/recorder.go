package testutil

import "github.com/roach88/outbreak/internal/rng"

// Recorder wraps an rng.Source and keeps every draw it hands out, so a
// run can be replayed through rng.NewScript.
type Recorder struct {
	src   rng.Source
	draws []rng.Draw
}

// NewRecorder wraps src.
func NewRecorder(src rng.Source) *Recorder {
	return &Recorder{src: src}
}

// Uniform implements rng.Source.
func (r *Recorder) Uniform() float64 {
	v := r.src.Uniform()
	r.draws = append(r.draws, rng.Draw{Kind: rng.KindUniform, Value: v})
	return v
}

// Normal implements rng.Source.
func (r *Recorder) Normal(sd float64) float64 {
	v := r.src.Normal(sd)
	r.draws = append(r.draws, rng.Draw{Kind: rng.KindNormal, Value: v})
	return v
}

// Draws returns a copy of the draws recorded so far.
func (r *Recorder) Draws() []rng.Draw {
	out := make([]rng.Draw, len(r.draws))
	copy(out, r.draws)
	return out
}

// Len returns the number of draws recorded.
func (r *Recorder) Len() int { return len(r.draws) }
