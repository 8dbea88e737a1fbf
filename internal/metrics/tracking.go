package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/invpend/internal/sim"
)

// TrackingRMS is the root mean square of setpoint - theta over all ticks.
type TrackingRMS struct {
	sq []float64
}

func NewTrackingRMS() *TrackingRMS {
	return &TrackingRMS{}
}

func (m *TrackingRMS) Name() string { return "tracking_rms" }

func (m *TrackingRMS) Observe(s sim.Sample) {
	e := s.Setpoint - s.Theta
	m.sq = append(m.sq, e*e)
}

func (m *TrackingRMS) Value() float64 {
	if len(m.sq) == 0 {
		return 0
	}
	return math.Sqrt(stat.Mean(m.sq, nil))
}

func (m *TrackingRMS) Reset() { m.sq = m.sq[:0] }
