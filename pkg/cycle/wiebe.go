package cycle

import "math"

// BurnedFraction is the Wiebe mass-fraction-burned curve:
//
//	f(θ) = 1 - exp(-a * x^m),  x = (θ - start) / duration
//
// It is 0 before the combustion start, saturates to 1 past the end of the
// window (clamped, not extrapolated), and rises monotonically in between.
// Stateless; the stepper differentiates consecutive evaluations to obtain
// the heat released per step.
func BurnedFraction(angleDeg, startDeg, durationDeg, a, m float64) float64 {
	if angleDeg < startDeg {
		return 0
	}
	x := (angleDeg - startDeg) / durationDeg
	if x > 1 {
		return 1
	}
	return 1 - math.Exp(-a*math.Pow(x, m))
}

// BurnedFraction evaluates the Wiebe curve with this parameter set's
// combustion window and shape constants.
func (p Parameters) BurnedFraction(angleDeg float64) float64 {
	return BurnedFraction(angleDeg, p.CombustionStartDeg, p.CombustionDurationDeg, p.WiebeA, p.WiebeM)
}
