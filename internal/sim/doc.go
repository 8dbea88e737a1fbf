// Package sim drives the plant and the controller on a fixed tick.
//
// A [Loop] owns the ordering contract: the controller sees the plant state
// from before the tick, and the plant receives this tick's command (zero when
// control is disabled). Plant and controller stay unaware of each other, so
// either side can be swapped through the [Plant] and [Controller] interfaces.
//
// # Thread Safety
//
// A Loop serializes ticks, resets, toggles and [Loop.Configure] calls behind
// one mutex. Plants and controllers must only be mutated through it once the
// loop is shared between goroutines.
package sim
