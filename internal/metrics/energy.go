package metrics

import (
	"math"

	"github.com/san-kum/invpend/internal/dynamo"
	"github.com/san-kum/invpend/internal/sim"
)

// EnergyDrift is the largest absolute departure from the first observed
// energy. It only means something for unforced runs.
type EnergyDrift struct {
	dyn      dynamo.Hamiltonian
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(dyn dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{dyn: dyn}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(s sim.Sample) {
	energy := e.dyn.Energy(dynamo.State{s.Theta, s.Omega})
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initial))
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
