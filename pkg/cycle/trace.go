package cycle

// KelvinToCelsiusOffset converts between the internal Kelvin arithmetic and
// the Celsius values handed to consumers.
const KelvinToCelsiusOffset = 273.15

// Trace is one computed cycle: four aligned sequences indexed by sample, in
// increasing crank angle. Temperatures are stored in Kelvin; the Celsius
// view exists only at the output boundary.
type Trace struct {
	Params Parameters

	AnglesDeg     []float64
	VolumesM3     []float64
	TemperaturesK []float64
	PressuresPa   []float64
	Phases        []Phase
}

// Len returns the sample count.
func (t *Trace) Len() int { return len(t.AnglesDeg) }

// TemperaturesCelsius returns the temperature sequence converted to Celsius.
func (t *Trace) TemperaturesCelsius() []float64 {
	out := make([]float64, len(t.TemperaturesK))
	for i, k := range t.TemperaturesK {
		out[i] = k - KelvinToCelsiusOffset
	}
	return out
}

// PressuresBar returns the pressure sequence converted from Pascal to bar.
func (t *Trace) PressuresBar() []float64 {
	out := make([]float64, len(t.PressuresPa))
	for i, pa := range t.PressuresPa {
		out[i] = pa / 1e5
	}
	return out
}

// PeakTemperature returns the crank angle and Kelvin value of the hottest
// sample.
func (t *Trace) PeakTemperature() (angleDeg, tempK float64) {
	i := argmax(t.TemperaturesK)
	return t.AnglesDeg[i], t.TemperaturesK[i]
}

// PeakPressure returns the crank angle and Pascal value of the highest
// pressure sample.
func (t *Trace) PeakPressure() (angleDeg, pressurePa float64) {
	i := argmax(t.PressuresPa)
	return t.AnglesDeg[i], t.PressuresPa[i]
}

// TimeAxis maps the angle grid onto seconds at the given engine speed. One
// four-stroke cycle spans two revolutions, so the full 720° takes
// 2 * 60 / rpm seconds. This is a stateless output transform, not part of
// the recurrence.
func (t *Trace) TimeAxis(rpm float64) []float64 {
	cycleSeconds := 2 * 60.0 / rpm
	out := make([]float64, len(t.AnglesDeg))
	for i, a := range t.AnglesDeg {
		out[i] = a * cycleSeconds / 720
	}
	return out
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
