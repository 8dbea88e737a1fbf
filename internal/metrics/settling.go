package metrics

import (
	"math"

	"github.com/san-kum/invpend/internal/sim"
)

// SettlingTime is the earliest time after which |setpoint - theta| stayed
// within band until the end of the run, or -1 if the last sample was outside.
type SettlingTime struct {
	band    float64
	entered float64
	inside  bool
}

func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{band: band}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(x sim.Sample) {
	within := math.Abs(x.Setpoint-x.Theta) <= s.band
	switch {
	case within && !s.inside:
		s.inside = true
		s.entered = x.Time
	case !within:
		s.inside = false
	}
}

func (s *SettlingTime) Value() float64 {
	if !s.inside {
		return -1
	}
	return s.entered
}

func (s *SettlingTime) Reset() {
	s.inside = false
	s.entered = 0
}
