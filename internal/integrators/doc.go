// Package integrators provides fixed-step schemes for [dynamo.System].
//
// All schemes assume a position/velocity layout: the first half of the state
// holds positions, the second half the matching velocities. The pendulum plant
// uses [SemiImplicitEuler]; [Euler] and [RK4] exist so the same plant can be
// compared under other fixed-step schemes.
package integrators
