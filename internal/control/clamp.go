package control

import "golang.org/x/exp/constraints"

// Clamp saturates x into the closed interval [lo, hi].
func Clamp[T constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
