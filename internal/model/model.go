package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Katakuri004/HT-Project-Scripts/pkg/cycle"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&CycleSample{},
}

// Run is one completed cycle computation with its full parameter set and
// summary figures. The per-angle samples hang off it as CycleSample rows.
type Run struct {
	gorm.Model
	Label       string    `json:"label" gorm:"size:127;index:idx_run_label"`
	Preset      string    `json:"preset" gorm:"size:64"`
	StartedAt   time.Time `json:"startedAt" gorm:"index:idx_run_started_at"`
	SampleCount int       `json:"sampleCount"`
	RPM         float64   `json:"rpm"`

	// Parameters is the full engine calibration as JSON, so a run can be
	// reproduced exactly from its row.
	Parameters datatypes.JSON `json:"parameters"`

	PeakTempK            float64 `json:"peakTempK"`
	PeakTempAngleDeg     float64 `json:"peakTempAngleDeg"`
	PeakPressurePa       float64 `json:"peakPressurePa"`
	PeakPressureAngleDeg float64 `json:"peakPressureAngleDeg"`
	FinalTempK           float64 `json:"finalTempK"`
	FinalPressurePa      float64 `json:"finalPressurePa"`

	Samples []CycleSample `json:"samples,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Run) TableName() string {
	return "runs"
}

// CycleSample is one point of a run's trace.
type CycleSample struct {
	ID           uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID        uint    `json:"runId" gorm:"index:idx_cyclesample_run_id"`
	AngleDeg     float64 `json:"angleDeg"`
	VolumeM3     float64 `json:"volumeM3"`
	TemperatureK float64 `json:"temperatureK"`
	PressurePa   float64 `json:"pressurePa"`
	Phase        string  `json:"phase" gorm:"size:16"`
}

func (*CycleSample) TableName() string {
	return "cycle_samples"
}

// FromTrace builds a Run row, samples included, from a computed trace.
func FromTrace(label, preset string, rpm float64, t *cycle.Trace) (*Run, error) {
	paramsJSON, err := json.Marshal(t.Params)
	if err != nil {
		return nil, fmt.Errorf("marshaling run parameters: %w", err)
	}

	tAngle, tPeak := t.PeakTemperature()
	pAngle, pPeak := t.PeakPressure()
	last := t.Len() - 1

	run := &Run{
		Label:       label,
		Preset:      preset,
		StartedAt:   time.Now().UTC(),
		SampleCount: t.Len(),
		RPM:         rpm,
		Parameters:  datatypes.JSON(paramsJSON),

		PeakTempK:            tPeak,
		PeakTempAngleDeg:     tAngle,
		PeakPressurePa:       pPeak,
		PeakPressureAngleDeg: pAngle,
		FinalTempK:           t.TemperaturesK[last],
		FinalPressurePa:      t.PressuresPa[last],
	}

	run.Samples = make([]CycleSample, t.Len())
	for i := range run.Samples {
		run.Samples[i] = CycleSample{
			AngleDeg:     t.AnglesDeg[i],
			VolumeM3:     t.VolumesM3[i],
			TemperatureK: t.TemperaturesK[i],
			PressurePa:   t.PressuresPa[i],
			Phase:        t.Phases[i].String(),
		}
	}
	return run, nil
}

// DecodeParameters restores the engine calibration stored on a run.
func (r *Run) DecodeParameters() (cycle.Parameters, error) {
	var params cycle.Parameters
	if err := json.Unmarshal(r.Parameters, &params); err != nil {
		return params, fmt.Errorf("decoding run parameters: %w", err)
	}
	return params, nil
}
