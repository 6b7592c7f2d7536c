package cycle

import (
	"fmt"
	"math"
)

// Run computes one full 720° cycle at the requested resolution. The angle
// grid is evenly spaced over [0, 720] inclusive; the volume profile is
// evaluated once for the whole grid; the reference state is captured at the
// sample nearest 180°; then the stepper folds left to right, each sample a
// function of the one before it. The result is deterministic: the same
// inputs always produce bit-identical output.
func Run(sampleCount int, p Parameters) (*Trace, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if sampleCount < 2 {
		return nil, fmt.Errorf("%w: sample count must be at least 2, got %d", ErrInvalidParameters, sampleCount)
	}

	angles := angleGrid(sampleCount)
	vols := p.volumeProfile(angles)

	ref := Reference{
		VolumeM3:     vols[nearestIndex(angles, 180)],
		TemperatureK: p.InitialTempK,
		PressurePa:   p.InitialPressurePa,
	}

	t := &Trace{
		Params:        p,
		AnglesDeg:     angles,
		VolumesM3:     vols,
		TemperaturesK: make([]float64, sampleCount),
		PressuresPa:   make([]float64, sampleCount),
		Phases:        make([]Phase, sampleCount),
	}

	state := p.seed()
	t.TemperaturesK[0] = state.TemperatureK
	t.PressuresPa[0] = state.PressurePa
	t.Phases[0] = p.ClassifyAngle(angles[0])

	for i := 1; i < sampleCount; i++ {
		state = p.step(state, angles[i], vols[i], vols[i-1], ref)
		t.TemperaturesK[i] = state.TemperatureK
		t.PressuresPa[i] = state.PressurePa
		t.Phases[i] = p.ClassifyAngle(angles[i])
	}

	return t, nil
}

// angleGrid spans [0, 720] inclusive with n evenly spaced points.
func angleGrid(n int) []float64 {
	angles := make([]float64, n)
	step := 720.0 / float64(n-1)
	for i := range angles {
		angles[i] = float64(i) * step
	}
	angles[n-1] = 720
	return angles
}

// nearestIndex finds the grid index closest to the target angle. The grid is
// sorted ascending, so the scan stops as soon as the distance starts growing.
func nearestIndex(angles []float64, target float64) int {
	best := 0
	bestDist := math.Abs(angles[0] - target)
	for i, a := range angles[1:] {
		d := math.Abs(a - target)
		if d >= bestDist {
			break
		}
		best, bestDist = i+1, d
	}
	return best
}
