package integrators

import "github.com/san-kum/invpend/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme. The control input is
// held constant across the four stages (zero-order hold).
type RK4 struct {
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(r.stage) != n {
		r.stage = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, u, t)
	k2 := dyn.Derive(r.offset(x, k1, dt/2), u, t+dt/2)
	k3 := dyn.Derive(r.offset(x, k2, dt/2), u, t+dt/2)
	k4 := dyn.Derive(r.offset(x, k3, dt), u, t+dt)

	next := make(dynamo.State, n)
	for i := range x {
		next[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return next
}

// offset fills the stage buffer with x + h*k. The buffer is reused, so the
// result is only valid until the next call.
func (r *RK4) offset(x, k dynamo.State, h float64) dynamo.State {
	for i := range x {
		r.stage[i] = x[i] + h*k[i]
	}
	return r.stage
}
