// Package physics provides the plant of the control lab.
//
// [InvertedPendulum] is a single-link pendulum actuated at its pivot. Gravity
// enters with a positive sin(theta), so theta = 0 is the unstable upright
// equilibrium and theta = pi the stable hanging one. The plant starts, and
// resets, at theta = pi/2.
//
// The plant implements [dynamo.System] so its step can be delegated to any
// fixed-step [dynamo.Integrator]; the default is semi-implicit Euler.
//
//	p, _ := physics.NewInvertedPendulum()
//	p.Update(tau)
//	fmt.Println(p.ThetaDegrees())
package physics
