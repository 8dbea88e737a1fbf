// Package metrics summarizes a run from the samples the loop emits.
//
// Every metric implements [sim.Metric] and is reset at the start of each
// [sim.Loop.Run].
package metrics
