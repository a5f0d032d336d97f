package highlights

import (
	"iter"
	"math"
)

// StepTolerance is the fraction of step by which the final offset may overshoot the
// upper bound and still be yielded. It absorbs floating-point drift from repeated addition.
const StepTolerance = 0.1

// Offsets yields window start offsets 0, step, 2*step, ... up to and including upper
// (within step*StepTolerance), rounded to two decimals. The sequence is lazy and can be
// ranged over any number of times.
func Offsets(upper, step float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if step <= 0 || math.IsNaN(upper) || math.IsInf(upper, 0) {
			return
		}
		eps := step * StepTolerance
		for cur := 0.0; cur <= upper+eps; cur += step {
			if !yield(round2(cur)) {
				return
			}
		}
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
