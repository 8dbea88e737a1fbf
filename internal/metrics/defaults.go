package metrics

import "github.com/san-kum/invpend/internal/sim"

// Defaults is the set attached to every CLI run.
func Defaults(maxOutput float64) []sim.Metric {
	return []sim.Metric{
		NewTrackingRMS(),
		NewControlEffort(),
		NewSaturation(maxOutput),
		NewSettlingTime(0.02),
	}
}
