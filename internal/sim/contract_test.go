package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/invpend/internal/control"
	"github.com/san-kum/invpend/internal/dynamo"
	"github.com/san-kum/invpend/internal/integrators"
	"github.com/san-kum/invpend/internal/physics"
	"github.com/san-kum/invpend/internal/sim"
)

// uprightPlant runs the pendulum dynamics from theta = 0, which the real plant
// cannot reach through Update or Reset alone.
type uprightPlant struct {
	dyn   *physics.InvertedPendulum
	integ dynamo.Integrator
	x     dynamo.State
}

func newUprightPlant() *uprightPlant {
	dyn, err := physics.NewInvertedPendulum()
	Expect(err).NotTo(HaveOccurred())
	return &uprightPlant{dyn: dyn, integ: integrators.NewSemiImplicitEuler(), x: dynamo.State{0, 0}}
}

func (p *uprightPlant) Theta() float64 { return p.x[0] }
func (p *uprightPlant) Omega() float64 { return p.x[1] }
func (p *uprightPlant) Dt() float64    { return p.dyn.Dt() }
func (p *uprightPlant) Reset()         { p.x = dynamo.State{0, 0} }
func (p *uprightPlant) Update(tau float64) {
	p.x = p.integ.Step(p.dyn, p.x, dynamo.Control{tau}, 0, p.dyn.Dt())
}

var _ = Describe("Loop", func() {
	var (
		plant *physics.InvertedPendulum
		pid   *control.PID
	)

	BeforeEach(func() {
		var err error
		plant, err = physics.NewInvertedPendulum()
		Expect(err).NotTo(HaveOccurred())
		pid, err = control.NewPID(300, 20, 500, 0.02, 30)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with control disabled", func() {
		It("applies exactly zero torque and matches the bare plant", func() {
			loop, err := sim.New(plant, pid)
			Expect(err).NotTo(HaveOccurred())

			reference, _ := physics.NewInvertedPendulum()
			for i := 0; i < 100; i++ {
				s := loop.Tick()
				reference.Update(0)
				Expect(s.Tau).To(Equal(0.0))
				Expect(s.Theta).To(Equal(reference.Theta()))
				Expect(s.Omega).To(Equal(reference.Omega()))
			}
			Expect(pid.Integral()).To(Equal(0.0))
			Expect(pid.LastError()).To(Equal(0.0))
		})
	})

	Context("with control enabled from horizontal", func() {
		It("saturates on the first tick and feeds that torque to the plant", func() {
			loop, err := sim.New(plant, pid, sim.WithEnabled(true))
			Expect(err).NotTo(HaveOccurred())

			s := loop.Tick()

			Expect(s.Tau).To(Equal(-30.0))
			reference, _ := physics.NewInvertedPendulum()
			reference.Update(-30)
			Expect(s.Theta).To(Equal(reference.Theta()))
		})

		It("keeps every command inside the output bound", func() {
			loop, err := sim.New(plant, pid, sim.WithEnabled(true))
			Expect(err).NotTo(HaveOccurred())

			result, err := loop.Run(context.Background(), 5)
			Expect(err).NotTo(HaveOccurred())
			for _, s := range result.Samples {
				Expect(math.Abs(s.Tau)).To(BeNumerically("<=", 30))
			}
		})

		It("balances upright with moderate PD gains", func() {
			pd, err := control.NewPID(60, 0, 20, 0.02, 30)
			Expect(err).NotTo(HaveOccurred())
			loop, err := sim.New(plant, pd, sim.WithEnabled(true), sim.WithValidateState(true))
			Expect(err).NotTo(HaveOccurred())

			result, err := loop.Run(context.Background(), 15)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Final().Theta).To(BeNumerically("~", 0, 0.01))
			Expect(result.Final().Omega).To(BeNumerically("~", 0, 0.01))
		})
	})

	Context("when control starts at the setpoint", func() {
		It("holds the upright equilibrium with zero output", func() {
			loop, err := sim.New(newUprightPlant(), pid, sim.WithEnabled(true))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 500; i++ {
				s := loop.Tick()
				Expect(s.Tau).To(Equal(0.0))
				Expect(s.Theta).To(Equal(0.0))
			}
			Expect(pid.LastError()).To(Equal(0.0))
		})

		It("leaves horizontal because it is not an equilibrium", func() {
			pid.SetSetpoint(math.Pi / 2)
			loop, err := sim.New(plant, pid, sim.WithEnabled(true))
			Expect(err).NotTo(HaveOccurred())

			first := loop.Tick()
			Expect(first.Tau).To(Equal(0.0))
			Expect(first.Theta).NotTo(Equal(math.Pi / 2))

			second := loop.Tick()
			Expect(second.Tau).To(BeNumerically("<", 0))
		})
	})

	Context("when reconfigured between ticks", func() {
		It("uses new gains from the next tick and keeps controller state across reset", func() {
			loop, err := sim.New(plant, pid, sim.WithEnabled(true))
			Expect(err).NotTo(HaveOccurred())
			loop.Tick()
			integral := pid.Integral()

			loop.Reset()
			Expect(plant.Theta()).To(Equal(math.Pi / 2))
			Expect(pid.Integral()).To(Equal(integral))

			loop.Configure(func() {
				pid.SetKp(0)
				pid.SetKi(0)
				pid.SetKd(0)
			})
			Expect(loop.Tick().Tau).To(Equal(0.0))
		})
	})

	It("rejects a controller stepping at a different rate", func() {
		other, err := control.NewPID(1, 1, 1, 0.01, 30)
		Expect(err).NotTo(HaveOccurred())
		_, err = sim.New(plant, other)
		Expect(err).To(MatchError(dynamo.ErrDtMismatch))
	})
})
