package sim

// Plant is the physical side of the loop. Theta is the measurement handed to
// the controller; Update applies one step of torque.
type Plant interface {
	Theta() float64
	Omega() float64
	Update(tau float64)
	Reset()
}

// Controller converts a measurement into a torque command. Compute mutates
// controller state and is called at most once per tick.
type Controller interface {
	Compute(measurement float64) float64
}

type stepper interface {
	Dt() float64
}

type setpointer interface {
	Setpoint() float64
}

// Sample is the observable loop state after a tick.
type Sample struct {
	Step     int     `json:"step"`
	Time     float64 `json:"time"`
	Theta    float64 `json:"theta"`
	Omega    float64 `json:"omega"`
	Tau      float64 `json:"tau"`
	Setpoint float64 `json:"setpoint"`
	Enabled  bool    `json:"enabled"`
}

// Observer and Metric callbacks run inside the loop's lock and must not call
// back into the Loop.
type Observer interface {
	OnStep(s Sample)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded sample.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
