package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invpend/internal/dynamo"
)

type PlantParams struct {
	Gravity float64
	Length  float64
	Mass    float64
}

type Gains struct {
	Kp float64
	Ki float64
	Kd float64
}

type Report struct {
	// Theta0 is the setpoint; Equilibrium is where the loop comes to rest.
	// They differ only without integral action, where a steady error has to
	// supply the holding torque.
	Theta0      float64
	Equilibrium float64

	// HoldingTorque is the torque that keeps the plant still at Equilibrium.
	HoldingTorque float64
	// Reachable is false when no equilibrium was found or the controller
	// cannot produce HoldingTorque within its output and integral bounds.
	Reachable bool

	// The stable flags are never set for an unreachable equilibrium.
	Continuous       []complex128
	ContinuousStable bool

	Discrete       []complex128
	SpectralRadius float64
	DiscreteStable bool
}

// Analyze linearizes the loop around its rest point for setpoint theta0.
// The integral state is left out when ki is zero, since it then has no effect
// on the plant.
func Analyze(p PlantParams, g Gains, theta0, dt, maxOutput float64) (*Report, error) {
	if !dynamo.IsFinite(dt) || dt <= 0 {
		return nil, dynamo.BoundsError("dt", dt)
	}
	if p.Length <= 0 || p.Mass <= 0 {
		return nil, fmt.Errorf("%w: length=%v mass=%v", dynamo.ErrParameterBounds, p.Length, p.Mass)
	}

	r := &Report{Theta0: theta0, Equilibrium: theta0}
	if g.Ki == 0 {
		eq, ok := restPoint(p, g.Kp, theta0)
		if !ok {
			r.Equilibrium = math.NaN()
			r.HoldingTorque = math.NaN()
			return r, nil
		}
		r.Equilibrium = eq
	}

	r.HoldingTorque = -p.Mass * p.Gravity * p.Length * math.Sin(r.Equilibrium)
	r.Reachable = math.Abs(r.HoldingTorque) <= maxOutput
	if g.Ki != 0 && math.Abs(r.HoldingTorque/g.Ki) > maxOutput {
		// the integral saturates before it can carry the load
		r.Reachable = false
	}

	var err error
	r.Continuous, err = eigenvalues(continuousMatrix(p, g, r.Equilibrium))
	if err != nil {
		return nil, err
	}
	r.ContinuousStable = r.Reachable
	for _, v := range r.Continuous {
		if real(v) >= 0 {
			r.ContinuousStable = false
		}
	}

	r.Discrete, err = eigenvalues(discreteMatrix(p, g, r.Equilibrium, dt))
	if err != nil {
		return nil, err
	}
	for _, v := range r.Discrete {
		r.SpectralRadius = math.Max(r.SpectralRadius, cmplx.Abs(v))
	}
	r.DiscreteStable = r.Reachable && r.SpectralRadius < 1

	return r, nil
}

// restPoint solves kp*(theta-theta0) = m*g*l*sin(theta) by Newton's method
// from theta0: the angle where a PD controller's steady error balances
// gravity. It reports false when the iteration stalls or does not converge.
func restPoint(p PlantParams, kp, theta0 float64) (float64, bool) {
	mgl := p.Mass * p.Gravity * p.Length
	theta := theta0
	for i := 0; i < 100; i++ {
		f := kp*(theta-theta0) - mgl*math.Sin(theta)
		if math.Abs(f) < 1e-12 {
			return theta, true
		}
		df := kp - mgl*math.Cos(theta)
		if df == 0 {
			return 0, false
		}
		theta -= f / df
		if !dynamo.IsFinite(theta) {
			return 0, false
		}
	}
	return 0, false
}

// continuousMatrix has state (dtheta, omega[, integral of error]).
func continuousMatrix(p PlantParams, g Gains, at float64) *mat.Dense {
	j := p.Mass * p.Length * p.Length
	c := (p.Gravity / p.Length) * math.Cos(at)

	if g.Ki == 0 {
		return mat.NewDense(2, 2, []float64{
			0, 1,
			c - g.Kp/j, -g.Kd / j,
		})
	}
	return mat.NewDense(3, 3, []float64{
		0, 1, 0,
		c - g.Kp/j, -g.Kd / j, g.Ki / j,
		-1, 0, 0,
	})
}

// discreteMatrix maps (dtheta_k, omega_k, integral_{k-1}, error_{k-1}) to the
// next tick.
func discreteMatrix(p PlantParams, g Gains, at, dt float64) *mat.Dense {
	j := p.Mass * p.Length * p.Length
	c := (p.Gravity / p.Length) * math.Cos(at)

	// torque = tTheta*dtheta + tInt*integral + tErr*lastError
	tTheta := -g.Kp - g.Ki*dt - g.Kd/dt
	tInt := g.Ki
	tErr := -g.Kd / dt

	omega := []float64{dt*c + dt/j*tTheta, 1, dt / j * tInt, dt / j * tErr}
	theta := []float64{1 + dt*omega[0], dt * omega[1], dt * omega[2], dt * omega[3]}

	if g.Ki == 0 {
		return mat.NewDense(3, 3, []float64{
			theta[0], theta[1], theta[3],
			omega[0], omega[1], omega[3],
			-1, 0, 0,
		})
	}
	return mat.NewDense(4, 4, []float64{
		theta[0], theta[1], theta[2], theta[3],
		omega[0], omega[1], omega[2], omega[3],
		-dt, 0, 1, 0,
		-1, 0, 0, 0,
	})
}

func eigenvalues(a *mat.Dense) ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigen decomposition did not converge")
	}
	return eig.Values(nil), nil
}
