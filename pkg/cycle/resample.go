package cycle

import "fmt"

// Resample maps a computed trace onto a new evenly spaced angle grid with
// linear interpolation. It never re-runs the recurrence: the stepper is only
// valid along its own self-consistent step sequence, so coarser or finer
// views are always derived from the canonical trace. Linear interpolation
// cannot produce values outside the bounds of the source samples.
func Resample(t *Trace, sampleCount int) (*Trace, error) {
	if sampleCount < 2 {
		return nil, fmt.Errorf("%w: resample count must be at least 2, got %d", ErrInvalidParameters, sampleCount)
	}
	if t.Len() < 2 {
		return nil, fmt.Errorf("%w: source trace has %d samples", ErrInvalidParameters, t.Len())
	}

	angles := angleGrid(sampleCount)
	out := &Trace{
		Params:        t.Params,
		AnglesDeg:     angles,
		VolumesM3:     make([]float64, sampleCount),
		TemperaturesK: make([]float64, sampleCount),
		PressuresPa:   make([]float64, sampleCount),
		Phases:        make([]Phase, sampleCount),
	}
	for i, a := range angles {
		out.VolumesM3[i] = interpolate(t.AnglesDeg, t.VolumesM3, a)
		out.TemperaturesK[i] = interpolate(t.AnglesDeg, t.TemperaturesK, a)
		out.PressuresPa[i] = interpolate(t.AnglesDeg, t.PressuresPa, a)
		out.Phases[i] = t.Params.ClassifyAngle(a)
	}
	return out, nil
}

// interpolate evaluates the piecewise-linear function through (xs, ys) at x.
// xs must be sorted ascending; values outside the range clamp to the ends.
func interpolate(xs, ys []float64, x float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	last := len(xs) - 1
	if x >= xs[last] {
		return ys[last]
	}
	// find the segment containing x
	lo, hi := 0, last
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	frac := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + frac*(ys[hi]-ys[lo])
}
