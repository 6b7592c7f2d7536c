package cycle

import "math"

// State is the thermodynamic state carried from one sample to the next.
// Burned tracks the cumulative Wiebe fraction so the combustion rule can
// work with the increment released since the previous sample.
type State struct {
	TemperatureK float64
	PressurePa   float64
	Burned       float64
}

// Reference is the normalization basis for the compression polytropic,
// captured once per run at the end of the intake stroke (the sample nearest
// 180°). Read-only after capture.
type Reference struct {
	VolumeM3     float64
	TemperatureK float64
	PressurePa   float64
}

// seed is the explicit first element of the fold. The recurrence never
// computes sample zero; it starts from the intake conditions directly, which
// also keeps the volume-ratio terms away from an uninitialized denominator.
func (p Parameters) seed() State {
	return State{
		TemperatureK: p.InitialTempK,
		PressurePa:   p.InitialPressurePa * p.IntakePressureFactor,
	}
}

// step advances the recurrence by one sample: given the previous state and
// the volumes on both sides of the step, it produces the state at angleDeg.
// The update rule is selected by exhaustive match on the phase, so no angle
// can fall through unclassified. All arithmetic is in Kelvin and Pascal;
// Celsius conversion happens only at the output boundary.
func (p Parameters) step(prev State, angleDeg, vol, prevVol float64, ref Reference) State {
	switch p.ClassifyAngle(angleDeg) {
	case PhaseIntake:
		// Held at the charge temperature with a small fixed manifold drop.
		return State{
			TemperatureK: p.InitialTempK,
			PressurePa:   p.InitialPressurePa * p.IntakePressureFactor,
		}

	case PhaseCompression:
		// Polytropic against the reference captured at BDC.
		n := p.CompressionPolytropic
		ratio := ref.VolumeM3 / vol
		return State{
			TemperatureK: ref.TemperatureK * math.Pow(ratio, n-1),
			PressurePa:   ref.PressurePa * math.Pow(ratio, n),
		}

	case PhaseCombustion:
		burned := p.BurnedFraction(angleDeg)
		df := burned - prev.Burned
		if df < 0 {
			df = 0
		}
		// Wall heat loss grows with the gas-to-ambient temperature gap.
		heatLoss := p.CombustionHeatLossBase +
			p.CombustionHeatLossSlope*(prev.TemperatureK-p.AmbientTempK)/p.PeakTempK
		temp := prev.TemperatureK + (p.PeakTempK-prev.TemperatureK)*df*(1-heatLoss)

		// Effective gamma softens as the charge approaches peak temperature.
		gamma := p.GammaBase - p.GammaSlope*(temp/p.PeakTempK)
		press := prev.PressurePa * (temp / prev.TemperatureK) *
			math.Pow(prevVol/vol, gamma)
		return State{TemperatureK: temp, PressurePa: press, Burned: burned}

	case PhaseExpansion:
		// Variable polytropic exponent: hotter gas sheds energy faster, so
		// the effective index drops with the temperature excess.
		n := p.ExpansionPolytropicBase -
			p.ExpansionPolytropicSlope*(prev.TemperatureK-p.AmbientTempK)/(p.PeakTempK-p.AmbientTempK)
		heatLoss := p.ExpansionHeatLossCoeff * (prev.TemperatureK - p.AmbientTempK) / p.PeakTempK
		temp := prev.TemperatureK * math.Pow(vol/prevVol, 1-n) * (1 - heatLoss)
		press := prev.PressurePa * (temp / prev.TemperatureK) * (prevVol / vol)
		return State{TemperatureK: temp, PressurePa: press, Burned: prev.Burned}

	case PhaseBlowdown:
		// Sigmoid relaxation toward a near-ambient target across the window.
		progress := (angleDeg - p.ExhaustOpenDeg) / p.BlowdownDurationDeg
		decay := 1 / (1 + math.Exp(6*(progress-0.5)))

		targetTemp := p.InitialTempK + p.BlowdownTempOffsetK
		temp := prev.TemperatureK*decay + targetTemp*(1-decay)

		targetPress := p.InitialPressurePa * p.BlowdownPressureFactor
		base := prev.PressurePa * (temp / prev.TemperatureK) * (prevVol / vol)
		press := base*decay + targetPress*(1-decay)
		return State{TemperatureK: temp, PressurePa: press, Burned: prev.Burned}

	default: // PhaseDisplacement
		exhaustStart := p.ExhaustOpenDeg + p.BlowdownDurationDeg
		remaining := (angleDeg - exhaustStart) / (720 - exhaustStart)
		rate := p.ExhaustDecayBase + p.ExhaustDecaySlope*remaining

		targetTemp := p.InitialTempK + p.ExhaustTempOffsetK
		temp := prev.TemperatureK*(1-rate) + targetTemp*rate

		targetPress := p.InitialPressurePa * p.ExhaustPressureFactor
		press := prev.PressurePa*(1-rate) + targetPress*rate
		if p.PressureClampLow > 0 {
			press = clamp(press,
				p.InitialPressurePa*p.PressureClampLow,
				p.InitialPressurePa*p.PressureClampHigh)
		}
		return State{TemperatureK: temp, PressurePa: press, Burned: prev.Burned}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
