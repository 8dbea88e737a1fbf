// Package dynamo provides the shared primitives the pendulum lab is built on.
//
// The package defines the small vocabulary used between the plant, the
// integrators and the host layer:
//
//   - [State]: vector representing plant state, here (theta, omega)
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [Configurable]: live-tunable parameters for the interactive host
//
// # Thread Safety
//
// Nothing in this package synchronizes. The control loop in package sim owns
// the only mutex; plants and controllers are mutated from that single timeline.
package dynamo
