package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/invpend/internal/config"
	"github.com/san-kum/invpend/internal/control"
	"github.com/san-kum/invpend/internal/dynamo"
	"github.com/san-kum/invpend/internal/integrators"
	"github.com/san-kum/invpend/internal/metrics"
	"github.com/san-kum/invpend/internal/physics"
	"github.com/san-kum/invpend/internal/sim"
)

// Experiment is one plant, one PID and the loop joining them, all built
// from the same dt.
type Experiment struct {
	cfg   *config.Config
	Plant *physics.InvertedPendulum
	PID   *control.PID
	Loop  *sim.Loop
}

// Build validates cfg and wires a loop with the default metrics attached.
// Extra loop options (logger, observers) are applied after the config-derived
// ones.
func Build(cfg *config.Config, opts ...sim.Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plantOpts := []physics.Option{
		physics.WithDt(cfg.Dt),
		physics.WithGravity(cfg.Plant.Gravity),
		physics.WithLength(cfg.Plant.Length),
		physics.WithMass(cfg.Plant.Mass),
	}
	if cfg.Integrator != "" {
		integ, err := integrators.Get(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		plantOpts = append(plantOpts, physics.WithIntegrator(integ))
	}

	plant, err := physics.NewInvertedPendulum(plantOpts...)
	if err != nil {
		return nil, fmt.Errorf("plant: %w", err)
	}

	c := cfg.Controller
	pid, err := control.NewPID(c.Kp, c.Ki, c.Kd, cfg.Dt, c.MaxOutput)
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	pid.SetSetpoint(c.Setpoint)

	loopOpts := []sim.Option{
		sim.WithEnabled(c.Enabled),
		sim.WithValidateState(cfg.ValidateState),
	}
	for _, m := range metrics.Defaults(c.MaxOutput) {
		loopOpts = append(loopOpts, sim.WithMetric(m))
	}
	loopOpts = append(loopOpts, opts...)

	loop, err := sim.New(plant, pid, loopOpts...)
	if err != nil {
		return nil, err
	}

	return &Experiment{cfg: cfg.Clone(), Plant: plant, PID: pid, Loop: loop}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

// Run ticks the loop for the configured duration.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.Loop.Run(ctx, e.cfg.Duration)
}

// SetParam changes a controller parameter between ticks.
func (e *Experiment) SetParam(name string, value float64) error {
	var err error
	e.Loop.Configure(func() {
		err = e.PID.SetParam(name, value)
	})
	return err
}

// Params merges plant constants and controller parameters for reporting.
func (e *Experiment) Params() map[string]float64 {
	params := e.Plant.GetParams()
	var ctrl map[string]float64
	e.Loop.Configure(func() {
		ctrl = e.PID.GetParams()
	})
	for k, v := range ctrl {
		params[k] = v
	}
	return params
}

var _ dynamo.Configurable = (*control.PID)(nil)
