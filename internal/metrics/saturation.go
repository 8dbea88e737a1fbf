package metrics

import (
	"math"

	"github.com/san-kum/invpend/internal/sim"
)

// Saturation is the fraction of ticks whose torque sat on the output bound.
type Saturation struct {
	bound     float64
	saturated int
	samples   int
}

func NewSaturation(bound float64) *Saturation {
	return &Saturation{bound: bound}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(x sim.Sample) {
	s.samples++
	if s.bound > 0 && math.Abs(x.Tau) >= s.bound {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
