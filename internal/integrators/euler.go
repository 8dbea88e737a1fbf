package integrators

import "github.com/san-kum/invpend/internal/dynamo"

// Euler is the explicit forward scheme; positions advance with the old
// velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	next := make(dynamo.State, len(x))
	for i := range x {
		next[i] = x[i] + dx[i]*dt
	}
	return next
}
