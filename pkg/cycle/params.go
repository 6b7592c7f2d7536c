package cycle

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is the base error for all configuration problems
// detected before a cycle computation starts.
var ErrInvalidParameters = errors.New("invalid engine parameters")

// Parameters holds every constant a cycle computation depends on.
// All fields are invariant for the duration of one run; changing any of them
// starts a new, independent trace.
//
// Temperatures are Kelvin, pressures Pascal, lengths metres, angles degrees
// on the 0–720 crank scale.
type Parameters struct {
	// Geometry
	CompressionRatio float64 `json:"compressionRatio"`
	BoreM            float64 `json:"boreM"`
	StrokeM          float64 `json:"strokeM"`
	ConnectingRodM   float64 `json:"connectingRodM"`

	// Initial and ambient conditions
	AmbientTempK      float64 `json:"ambientTempK"`
	InitialTempK      float64 `json:"initialTempK"`
	InitialPressurePa float64 `json:"initialPressurePa"`

	// Combustion (Wiebe heat release)
	CombustionStartDeg    float64 `json:"combustionStartDeg"`
	CombustionDurationDeg float64 `json:"combustionDurationDeg"`
	PeakTempK             float64 `json:"peakTempK"`
	WiebeA                float64 `json:"wiebeA"`
	WiebeM                float64 `json:"wiebeM"`

	// Exhaust
	ExhaustOpenDeg      float64 `json:"exhaustOpenDeg"`
	BlowdownDurationDeg float64 `json:"blowdownDurationDeg"`

	// Empirical stroke constants. These are calibration values, not derived
	// physics; both presets below fill them in.
	IntakePressureFactor     float64 `json:"intakePressureFactor"`
	CompressionPolytropic    float64 `json:"compressionPolytropic"`
	CombustionHeatLossBase   float64 `json:"combustionHeatLossBase"`
	CombustionHeatLossSlope  float64 `json:"combustionHeatLossSlope"`
	GammaBase                float64 `json:"gammaBase"`
	GammaSlope               float64 `json:"gammaSlope"`
	ExpansionPolytropicBase  float64 `json:"expansionPolytropicBase"`
	ExpansionPolytropicSlope float64 `json:"expansionPolytropicSlope"`
	ExpansionHeatLossCoeff   float64 `json:"expansionHeatLossCoeff"`
	BlowdownTempOffsetK      float64 `json:"blowdownTempOffsetK"`
	BlowdownPressureFactor   float64 `json:"blowdownPressureFactor"`
	ExhaustTempOffsetK       float64 `json:"exhaustTempOffsetK"`
	ExhaustPressureFactor    float64 `json:"exhaustPressureFactor"`
	ExhaustDecayBase         float64 `json:"exhaustDecayBase"`
	ExhaustDecaySlope        float64 `json:"exhaustDecaySlope"`

	// Optional clamp band for displacement-stroke pressure, as multiples of
	// InitialPressurePa. Both zero disables the clamp.
	PressureClampLow  float64 `json:"pressureClampLow"`
	PressureClampHigh float64 `json:"pressureClampHigh"`
}

// DefaultParameters is the modern gasoline calibration: 10:1 compression,
// combustion starting 5° BTDC over 40°, 2800 K peak.
func DefaultParameters() Parameters {
	return Parameters{
		CompressionRatio: 10.0,
		BoreM:            0.080,
		StrokeM:          0.080,
		ConnectingRodM:   0.120,

		AmbientTempK:      298.0,
		InitialTempK:      313.0, // ambient plus residual-gas heating
		InitialPressurePa: 101325.0,

		CombustionStartDeg:    355.0,
		CombustionDurationDeg: 40.0,
		PeakTempK:             2800.0,
		WiebeA:                5.0,
		WiebeM:                3.0,

		ExhaustOpenDeg:      540.0,
		BlowdownDurationDeg: 60.0,

		IntakePressureFactor:     0.95,
		CompressionPolytropic:    1.35,
		CombustionHeatLossBase:   0.15,
		CombustionHeatLossSlope:  0.05,
		GammaBase:                1.38,
		GammaSlope:               0.08,
		ExpansionPolytropicBase:  1.30,
		ExpansionPolytropicSlope: 0.05,
		ExpansionHeatLossCoeff:   0.02,
		BlowdownTempOffsetK:      150.0,
		BlowdownPressureFactor:   1.2,
		ExhaustTempOffsetK:       120.0,
		ExhaustPressureFactor:    1.1,
		ExhaustDecayBase:         0.02,
		ExhaustDecaySlope:        0.03,

		PressureClampLow:  1.05,
		PressureClampHigh: 1.2,
	}
}

// LegacyBenchParameters reproduces the older 1000 RPM bench calibration:
// 11:1 compression, combustion at TDC over 30°, low peak temperature and a
// hot engine block as the ambient reference. Kept as a preset so historical
// spreadsheets remain comparable.
func LegacyBenchParameters() Parameters {
	p := DefaultParameters()
	p.CompressionRatio = 11.0
	p.AmbientTempK = 350.0
	p.InitialTempK = 350.0
	p.CombustionStartDeg = 360.0
	p.CombustionDurationDeg = 30.0
	p.PeakTempK = 1026.85
	p.WiebeM = 2.0
	return p
}

// CrankRadiusM is half the stroke.
func (p Parameters) CrankRadiusM() float64 { return p.StrokeM / 2 }

// RodRatio is connecting-rod length over crank radius. Must be >= 1 for the
// slider-crank square root to stay real.
func (p Parameters) RodRatio() float64 { return p.ConnectingRodM / p.CrankRadiusM() }

// DisplacedVolumeM3 is the swept volume pi/4 * bore^2 * stroke.
func (p Parameters) DisplacedVolumeM3() float64 {
	return math.Pi / 4 * p.BoreM * p.BoreM * p.StrokeM
}

// ClearanceVolumeM3 follows from the compression ratio:
// CR = (Vc + Vd) / Vc.
func (p Parameters) ClearanceVolumeM3() float64 {
	return p.DisplacedVolumeM3() / (p.CompressionRatio - 1)
}

// Validate checks the whole configuration before any stepping happens.
// A failure here is the only recoverable error class: the computation itself
// is deterministic and cannot fail once the inputs are accepted.
func (p Parameters) Validate() error {
	if p.CompressionRatio <= 1 {
		return fmt.Errorf("%w: compression ratio must exceed 1, got %g", ErrInvalidParameters, p.CompressionRatio)
	}
	if p.BoreM <= 0 || p.StrokeM <= 0 || p.ConnectingRodM <= 0 {
		return fmt.Errorf("%w: bore, stroke and connecting rod must be positive (bore=%g stroke=%g rod=%g)",
			ErrInvalidParameters, p.BoreM, p.StrokeM, p.ConnectingRodM)
	}
	if p.ConnectingRodM < p.CrankRadiusM() {
		// rod shorter than crank radius makes the kinematics impossible
		return fmt.Errorf("%w: connecting rod (%g m) shorter than crank radius (%g m)",
			ErrInvalidParameters, p.ConnectingRodM, p.CrankRadiusM())
	}
	if p.AmbientTempK <= 0 || p.InitialTempK <= 0 {
		return fmt.Errorf("%w: temperatures must be positive Kelvin (ambient=%g initial=%g)",
			ErrInvalidParameters, p.AmbientTempK, p.InitialTempK)
	}
	if p.InitialPressurePa <= 0 {
		return fmt.Errorf("%w: initial pressure must be positive, got %g", ErrInvalidParameters, p.InitialPressurePa)
	}
	if p.PeakTempK <= p.InitialTempK {
		return fmt.Errorf("%w: peak temperature (%g K) must exceed initial temperature (%g K)",
			ErrInvalidParameters, p.PeakTempK, p.InitialTempK)
	}
	if p.CombustionDurationDeg <= 0 {
		return fmt.Errorf("%w: combustion duration must be positive, got %g", ErrInvalidParameters, p.CombustionDurationDeg)
	}
	if p.CombustionStartDeg < 0 || p.CombustionStartDeg+p.CombustionDurationDeg > 720 {
		return fmt.Errorf("%w: combustion window [%g, %g] outside the 0–720 cycle",
			ErrInvalidParameters, p.CombustionStartDeg, p.CombustionStartDeg+p.CombustionDurationDeg)
	}
	if p.ExhaustOpenDeg <= 360 || p.ExhaustOpenDeg >= 720 {
		return fmt.Errorf("%w: exhaust valve opening must fall inside (360, 720), got %g",
			ErrInvalidParameters, p.ExhaustOpenDeg)
	}
	if p.BlowdownDurationDeg <= 0 || p.ExhaustOpenDeg+p.BlowdownDurationDeg >= 720 {
		return fmt.Errorf("%w: blow-down window [%g, %g] must be positive and end before 720",
			ErrInvalidParameters, p.ExhaustOpenDeg, p.ExhaustOpenDeg+p.BlowdownDurationDeg)
	}
	if p.WiebeA <= 0 || p.WiebeM <= 0 {
		return fmt.Errorf("%w: Wiebe shape parameters must be positive (a=%g m=%g)", ErrInvalidParameters, p.WiebeA, p.WiebeM)
	}
	if p.IntakePressureFactor <= 0 || p.IntakePressureFactor > 1 {
		return fmt.Errorf("%w: intake pressure factor must be in (0, 1], got %g", ErrInvalidParameters, p.IntakePressureFactor)
	}
	if p.CompressionPolytropic <= 1 {
		return fmt.Errorf("%w: compression polytropic exponent must exceed 1, got %g", ErrInvalidParameters, p.CompressionPolytropic)
	}
	if p.PressureClampLow != 0 || p.PressureClampHigh != 0 {
		if p.PressureClampLow <= 0 || p.PressureClampHigh < p.PressureClampLow {
			return fmt.Errorf("%w: pressure clamp band [%g, %g] is not ordered",
				ErrInvalidParameters, p.PressureClampLow, p.PressureClampHigh)
		}
	}
	return nil
}
