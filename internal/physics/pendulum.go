package physics

import (
	"math"

	"github.com/san-kum/invpend/internal/dynamo"
	"github.com/san-kum/invpend/internal/integrators"
)

const (
	DefaultDt      = 0.02
	DefaultGravity = 9.81
	DefaultLength  = 2.0
	DefaultMass    = 1.0

	// InitialTheta is the horizontal rest orientation.
	InitialTheta = math.Pi / 2
)

// InvertedPendulum holds (theta, omega). Theta and omega change only through
// Update and Reset; the physical constants are fixed at construction.
type InvertedPendulum struct {
	dt      float64
	gravity float64
	length  float64
	mass    float64

	state      dynamo.State
	integrator dynamo.Integrator
}

type Option func(*InvertedPendulum)

func WithDt(dt float64) Option     { return func(p *InvertedPendulum) { p.dt = dt } }
func WithGravity(g float64) Option { return func(p *InvertedPendulum) { p.gravity = g } }
func WithLength(l float64) Option  { return func(p *InvertedPendulum) { p.length = l } }
func WithMass(m float64) Option    { return func(p *InvertedPendulum) { p.mass = m } }
func WithIntegrator(i dynamo.Integrator) Option {
	return func(p *InvertedPendulum) { p.integrator = i }
}

func NewInvertedPendulum(opts ...Option) (*InvertedPendulum, error) {
	p := &InvertedPendulum{
		dt:         DefaultDt,
		gravity:    DefaultGravity,
		length:     DefaultLength,
		mass:       DefaultMass,
		state:      dynamo.State{InitialTheta, 0},
		integrator: integrators.NewSemiImplicitEuler(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if !dynamo.IsFinite(p.dt) || p.dt <= 0 {
		return nil, dynamo.BoundsError("dt", p.dt)
	}
	if !dynamo.IsFinite(p.gravity) {
		return nil, dynamo.BoundsError("gravity", p.gravity)
	}
	if !dynamo.IsFinite(p.length) || p.length <= 0 {
		return nil, dynamo.BoundsError("length", p.length)
	}
	if !dynamo.IsFinite(p.mass) || p.mass <= 0 {
		return nil, dynamo.BoundsError("mass", p.mass)
	}
	return p, nil
}

// Update advances the plant one step under pivot torque tau. Any tau is
// accepted; NaN or Inf propagate into the state.
func (p *InvertedPendulum) Update(tau float64) {
	p.state = p.integrator.Step(p, p.state, dynamo.Control{tau}, 0, p.dt)
}

// Reset returns to theta = pi/2, omega = 0.
func (p *InvertedPendulum) Reset() {
	p.state = dynamo.State{InitialTheta, 0}
}

func (p *InvertedPendulum) Theta() float64        { return p.state[0] }
func (p *InvertedPendulum) Omega() float64        { return p.state[1] }
func (p *InvertedPendulum) ThetaDegrees() float64 { return p.state[0] * 180 / math.Pi }
func (p *InvertedPendulum) Dt() float64           { return p.dt }
func (p *InvertedPendulum) Gravity() float64      { return p.gravity }
func (p *InvertedPendulum) Length() float64       { return p.length }
func (p *InvertedPendulum) Mass() float64         { return p.mass }

// State returns a copy of (theta, omega).
func (p *InvertedPendulum) State() dynamo.State { return p.state.Clone() }

func (p *InvertedPendulum) StateDim() int   { return 2 }
func (p *InvertedPendulum) ControlDim() int { return 1 }

// Derive returns (omega, alpha) with alpha = tau/(m*l^2) + (g/l)*sin(theta).
func (p *InvertedPendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	tau := 0.0
	if len(u) > 0 {
		tau = u[0]
	}
	alpha := tau/(p.mass*p.length*p.length) + (p.gravity/p.length)*math.Sin(x[0])
	return dynamo.State{x[1], alpha}
}

// Energy is conserved by the unforced dynamics. Potential energy is
// m*g*l*cos(theta), highest at the upright theta = 0.
func (p *InvertedPendulum) Energy(x dynamo.State) float64 {
	v := p.length * x[1]
	return 0.5*p.mass*v*v + p.mass*p.gravity*p.length*math.Cos(x[0])
}

func (p *InvertedPendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"dt":      p.dt,
		"gravity": p.gravity,
		"length":  p.length,
		"mass":    p.mass,
	}
}
