// Package analysis linearizes the closed loop around an equilibrium.
//
// [Analyze] reports two views of the same loop:
//
//   - continuous: the PID law applied to the pendulum ODE, ignoring sampling
//   - discrete: the exact per-tick map of the semi-implicit plant and the
//     backward-difference PID, which is what the simulator actually runs
//
// The two can disagree. A large derivative gain at a coarse tick can be
// stable in continuous time and still chatter on the output bound.
//
//	r, _ := analysis.Analyze(plant, gains, 0, 0.02, 30)
//	if !r.DiscreteStable {
//	    // expect oscillation or saturation chatter
//	}
//
// Saturation is ignored; results hold only while the command stays inside
// the output bound.
package analysis
