package workers

import "runtime"

// MaxResizers caps the resize pool. Each job holds a decoded full-size
// bitmap, so memory rather than CPU is the limit on large machines.
const MaxResizers = 16

// Resizers returns the default resize pool size: one job per schedulable
// CPU as reported by GOMAXPROCS, which follows the container CPU quota.
func Resizers() int {
	return Clamp(runtime.GOMAXPROCS(0))
}

// Clamp bounds a configured pool size to [1, MaxResizers].
func Clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxResizers {
		return MaxResizers
	}
	return n
}
