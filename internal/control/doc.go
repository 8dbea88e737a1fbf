// Package control provides the PID controller of the lab.
//
// [PID] turns a measurement into a bounded corrective output. The integral
// accumulator is clamped to the same symmetric bound as the output, a coarse
// anti-windup that must not be tightened.
//
// # Usage
//
//	pid, err := control.NewPID(300, 20, 500, 0.02, 30)  // Kp, Ki, Kd, dt, maxOutput
//	pid.SetSetpoint(0)
//	tau := pid.Compute(plant.Theta())
//
// Every Compute call advances the integral and the stored error, so callers
// must not call it speculatively. PID implements [dynamo.Configurable] for
// live tuning.
package control
