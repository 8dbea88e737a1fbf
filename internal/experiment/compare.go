package experiment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/invpend/internal/config"
	"github.com/san-kum/invpend/internal/control"
	"github.com/san-kum/invpend/internal/integrators"
	"github.com/san-kum/invpend/internal/metrics"
	"github.com/san-kum/invpend/internal/physics"
	"github.com/san-kum/invpend/internal/sim"
)

type Comparison struct {
	Integrator  string  `json:"integrator"`
	FinalTheta  float64 `json:"final_theta"`
	FinalOmega  float64 `json:"final_omega"`
	EnergyDrift float64 `json:"energy_drift"`
}

// CompareIntegrators runs the unforced plant from cfg under each named
// integrator. Results keep the order of names.
func CompareIntegrators(ctx context.Context, cfg *config.Config, names []string) ([]Comparison, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = integrators.Names()
	}

	out := make([]Comparison, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			integ, err := integrators.Get(name)
			if err != nil {
				return err
			}
			plant, err := physics.NewInvertedPendulum(
				physics.WithDt(cfg.Dt),
				physics.WithGravity(cfg.Plant.Gravity),
				physics.WithLength(cfg.Plant.Length),
				physics.WithMass(cfg.Plant.Mass),
				physics.WithIntegrator(integ),
			)
			if err != nil {
				return err
			}
			// the controller stays disabled; it only satisfies the loop
			idle, err := control.NewPID(0, 0, 0, cfg.Dt, 0)
			if err != nil {
				return err
			}
			drift := metrics.NewEnergyDrift(plant)
			loop, err := sim.New(plant, idle, sim.WithMetric(drift))
			if err != nil {
				return err
			}
			res, err := loop.Run(ctx, cfg.Duration)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			final := res.Final()
			out[i] = Comparison{
				Integrator:  name,
				FinalTheta:  final.Theta,
				FinalOmega:  final.Omega,
				EnergyDrift: res.Metrics[drift.Name()],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
