// Package viz is the interactive terminal host for a balancing experiment.
//
// [Model] is a Bubble Tea model that ticks the loop once per dt of wall time,
// draws the pendulum on a braille [Canvas] and charts the recent angle with
// asciigraph. All gain, setpoint, enable and reset changes go through the
// loop, so they never interleave with a tick.
//
// # Key Bindings
//
//	P         - Toggle PID control
//	R         - Reset the pendulum
//	Tab       - Select kp, ki or kd
//	Up/Down   - Selected gain +/-5%
//	0         - Zero the selected gain
//	E         - Type a value for the selected gain (Enter applies, Esc cancels)
//	+/-       - Setpoint +/-0.1 rad
//	Space     - Pause/Resume
//	T         - Cycle color themes
//	Q         - Quit
package viz
