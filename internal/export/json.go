package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/invpend/internal/config"
	"github.com/san-kum/invpend/internal/sim"
)

type Summary struct {
	Config       *config.Config     `json:"config"`
	Steps        int                `json:"steps"`
	FinalTheta   float64            `json:"final_theta"`
	FinalDegrees float64            `json:"final_degrees"`
	FinalOmega   float64            `json:"final_omega"`
	FinalTau     float64            `json:"final_tau"`
	Metrics      map[string]float64 `json:"metrics"`
	Samples      []sim.Sample       `json:"samples,omitempty"`
}

// NewSummary condenses a run. The trace is included only when withTrace is
// set.
func NewSummary(cfg *config.Config, result *sim.Result, withTrace bool) *Summary {
	final := result.Final()
	s := &Summary{
		Config:       cfg,
		Steps:        result.StepsTaken,
		FinalTheta:   final.Theta,
		FinalDegrees: final.Theta * 180 / math.Pi,
		FinalOmega:   final.Omega,
		FinalTau:     final.Tau,
		Metrics:      result.Metrics,
	}
	if withTrace {
		s.Samples = result.Samples
	}
	return s
}

// WriteJSON encodes v with two-space indentation. Non-finite floats cannot be
// encoded and surface as an error.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
