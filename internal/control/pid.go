package control

import (
	"fmt"

	"github.com/san-kum/invpend/internal/dynamo"
)

const (
	DefaultKp        = 50.0
	DefaultKi        = 50.0
	DefaultKd        = 50.0
	DefaultDt        = 0.02
	DefaultMaxOutput = 30.0
)

type PID struct {
	kp        float64
	ki        float64
	kd        float64
	dt        float64
	maxOutput float64
	setpoint  float64

	integral  float64
	lastError float64
}

// NewPID rejects a zero, negative or non-finite dt, since the derivative term
// divides by it, and a negative or non-finite maxOutput.
func NewPID(kp, ki, kd, dt, maxOutput float64) (*PID, error) {
	if !dynamo.IsFinite(dt) || dt <= 0 {
		return nil, dynamo.BoundsError("dt", dt)
	}
	if !dynamo.IsFinite(maxOutput) || maxOutput < 0 {
		return nil, dynamo.BoundsError("maxOutput", maxOutput)
	}
	return &PID{
		kp:        kp,
		ki:        ki,
		kd:        kd,
		dt:        dt,
		maxOutput: maxOutput,
	}, nil
}

// NewDefaultPID uses the package defaults for every argument.
func NewDefaultPID() *PID {
	p, _ := NewPID(DefaultKp, DefaultKi, DefaultKd, DefaultDt, DefaultMaxOutput)
	return p
}

// Compute returns the saturated PID output for measurement and advances the
// integral and last-error state, whether or not the output is used.
func (p *PID) Compute(measurement float64) float64 {
	err := p.setpoint - measurement

	p.integral += err * p.dt
	p.integral = Clamp(p.integral, -p.maxOutput, p.maxOutput)

	derivative := (err - p.lastError) / p.dt
	p.lastError = err

	out := p.kp*err + p.ki*p.integral + p.kd*derivative
	return Clamp(out, -p.maxOutput, p.maxOutput)
}

func (p *PID) SetKp(kp float64)             { p.kp = kp }
func (p *PID) SetKi(ki float64)             { p.ki = ki }
func (p *PID) SetKd(kd float64)             { p.kd = kd }
func (p *PID) SetSetpoint(setpoint float64) { p.setpoint = setpoint }

func (p *PID) Kp() float64        { return p.kp }
func (p *PID) Ki() float64        { return p.ki }
func (p *PID) Kd() float64        { return p.kd }
func (p *PID) Dt() float64        { return p.dt }
func (p *PID) MaxOutput() float64 { return p.maxOutput }
func (p *PID) Setpoint() float64  { return p.setpoint }
func (p *PID) Integral() float64  { return p.integral }
func (p *PID) LastError() float64 { return p.lastError }

// Reset clears the integral and the stored error. Nothing calls it
// implicitly; reconstructing the controller has the same effect.
func (p *PID) Reset() {
	p.integral = 0
	p.lastError = 0
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":       p.kp,
		"ki":       p.ki,
		"kd":       p.kd,
		"setpoint": p.setpoint,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.kp = value
	case "ki":
		p.ki = value
	case "kd":
		p.kd = value
	case "setpoint":
		p.setpoint = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
