// Package numeric holds the rounding and interpolation helpers shared by the
// generative packages.
//
// All artwork math runs in float64. Round uses half-up semantics (ties go
// toward +Inf) so that values such as -2.5 round to -2; this keeps derived
// integers stable across implementations that follow the same convention.
package numeric

import "math"

// Round rounds x to the nearest integer, with ties rounded toward +Inf.
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Lerp interpolates linearly between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Frac returns the fractional part of x in [0, 1).
func Frac(x float64) float64 {
	return x - math.Floor(x)
}
