package integrators

import "github.com/san-kum/invpend/internal/dynamo"

// SemiImplicitEuler updates velocities first and then advances positions with
// the updated velocities, both over the same dt.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2
	dx := dyn.Derive(x, u, t)

	next := make(dynamo.State, len(x))
	for i := 0; i < half; i++ {
		next[half+i] = x[half+i] + dx[half+i]*dt
		next[i] = x[i] + next[half+i]*dt
	}
	return next
}
