package cycle

import "math"

// Volume returns the instantaneous cylinder volume in cubic metres at the
// given crank angle, from slider-crank kinematics:
//
//	V = Vc * [1 + (CR-1)/2 * (R + 1 - cos θ - sqrt(R² - sin²θ))]
//
// where R is the rod ratio. It is a pure function of angle and geometry;
// Validate guarantees R >= 1 so the square root stays real.
func (p Parameters) Volume(angleDeg float64) float64 {
	theta := angleDeg * math.Pi / 180
	r := p.RodRatio()
	sin := math.Sin(theta)
	kinematic := r + 1 - math.Cos(theta) - math.Sqrt(r*r-sin*sin)
	return p.ClearanceVolumeM3() * (1 + 0.5*(p.CompressionRatio-1)*kinematic)
}

// volumeProfile evaluates Volume over a whole angle grid. The samples are
// independent of each other; the runner computes the array once and the
// stepper only ever consumes ratios of neighbouring entries.
func (p Parameters) volumeProfile(anglesDeg []float64) []float64 {
	vols := make([]float64, len(anglesDeg))
	for i, a := range anglesDeg {
		vols[i] = p.Volume(a)
	}
	return vols
}
