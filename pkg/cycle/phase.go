package cycle

// Phase identifies the thermodynamic regime a crank angle falls in. The six
// phases partition [0, 720] completely; classification is a pure lookup on
// the angle and the configured window boundaries, with no carried state.
type Phase int

const (
	PhaseIntake Phase = iota
	PhaseCompression
	PhaseCombustion
	PhaseExpansion
	PhaseBlowdown
	PhaseDisplacement
)

var phaseNames = [...]string{
	PhaseIntake:       "intake",
	PhaseCompression:  "compression",
	PhaseCombustion:   "combustion",
	PhaseExpansion:    "expansion",
	PhaseBlowdown:     "blowdown",
	PhaseDisplacement: "displacement",
}

func (ph Phase) String() string {
	if ph < 0 || int(ph) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[ph]
}

// ClassifyAngle maps a crank angle in [0, 720] to its phase. Boundaries are
// inclusive on the upper threshold, so 180 is still intake and 360 still
// compression; the combustion window only takes effect inside the power
// stroke, past 360.
func (p Parameters) ClassifyAngle(angleDeg float64) Phase {
	combustionEnd := p.CombustionStartDeg + p.CombustionDurationDeg
	switch {
	case angleDeg <= 180:
		return PhaseIntake
	case angleDeg <= 360:
		return PhaseCompression
	case angleDeg <= p.ExhaustOpenDeg:
		if angleDeg >= p.CombustionStartDeg && angleDeg <= combustionEnd {
			return PhaseCombustion
		}
		return PhaseExpansion
	case angleDeg <= p.ExhaustOpenDeg+p.BlowdownDurationDeg:
		return PhaseBlowdown
	default:
		return PhaseDisplacement
	}
}

// StrokeLabel names the mechanical stroke a crank angle belongs to, by 180°
// quadrant. Exporters use this for human-readable grouping; it is coarser
// than Phase (combustion and expansion share the power stroke).
func StrokeLabel(angleDeg float64) string {
	switch {
	case angleDeg < 180:
		return "Intake"
	case angleDeg < 360:
		return "Compression"
	case angleDeg < 540:
		return "Power"
	default:
		return "Exhaust"
	}
}
