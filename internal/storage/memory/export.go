package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunExport is the root JSON structure of an exported run. The trace is laid
// out as aligned arrays indexed by sample, temperatures in Celsius and
// pressures in bar to match the spreadsheet outputs.
type RunExport struct {
	Label       string          `json:"label"`
	StartedAt   string          `json:"startedAt"`
	SampleCount int             `json:"sampleCount"`
	RPM         float64         `json:"rpm"`
	Parameters  json.RawMessage `json:"parameters"`

	Summary RunSummary `json:"summary"`

	AnglesDeg     []float64 `json:"anglesDeg"`
	VolumesM3     []float64 `json:"volumesM3"`
	TemperaturesC []float64 `json:"temperaturesC"`
	PressuresBar  []float64 `json:"pressuresBar"`
	Phases        []string  `json:"phases"`
}

// RunSummary carries the headline figures of a run.
type RunSummary struct {
	PeakTempC            float64 `json:"peakTempC"`
	PeakTempAngleDeg     float64 `json:"peakTempAngleDeg"`
	PeakPressureBar      float64 `json:"peakPressureBar"`
	PeakPressureAngleDeg float64 `json:"peakPressureAngleDeg"`
	FinalTempC           float64 `json:"finalTempC"`
	FinalPressureBar     float64 `json:"finalPressureBar"`
}

const kelvinOffset = 273.15

// exportJSON writes a finished run to a (optionally gzipped) JSON file.
// Caller holds the lock.
func (b *Backend) exportJSON(record *RunRecord) error {
	export := buildExport(record)

	filename := exportFilename(record.Run.Label, record.Run.StartedAt, b.cfg.CompressOutput)
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func exportFilename(label string, startedAt time.Time, compress bool) string {
	label = strings.ReplaceAll(label, " ", "_")
	label = strings.ReplaceAll(label, ":", "_")
	timestamp := startedAt.Format("20060102_150405")

	if compress {
		return fmt.Sprintf("%s_%s.json.gz", label, timestamp)
	}
	return fmt.Sprintf("%s_%s.json", label, timestamp)
}

func buildExport(record *RunRecord) RunExport {
	run := record.Run
	export := RunExport{
		Label:       run.Label,
		StartedAt:   run.StartedAt.Format("2006-01-02T15:04:05Z"),
		SampleCount: len(record.Samples),
		RPM:         run.RPM,
		Parameters:  json.RawMessage(run.Parameters),

		Summary: RunSummary{
			PeakTempC:            run.PeakTempK - kelvinOffset,
			PeakTempAngleDeg:     run.PeakTempAngleDeg,
			PeakPressureBar:      run.PeakPressurePa / 1e5,
			PeakPressureAngleDeg: run.PeakPressureAngleDeg,
			FinalTempC:           run.FinalTempK - kelvinOffset,
			FinalPressureBar:     run.FinalPressurePa / 1e5,
		},

		AnglesDeg:     make([]float64, 0, len(record.Samples)),
		VolumesM3:     make([]float64, 0, len(record.Samples)),
		TemperaturesC: make([]float64, 0, len(record.Samples)),
		PressuresBar:  make([]float64, 0, len(record.Samples)),
		Phases:        make([]string, 0, len(record.Samples)),
	}

	for _, s := range record.Samples {
		export.AnglesDeg = append(export.AnglesDeg, s.AngleDeg)
		export.VolumesM3 = append(export.VolumesM3, s.VolumeM3)
		export.TemperaturesC = append(export.TemperaturesC, s.TemperatureK-kelvinOffset)
		export.PressuresBar = append(export.PressuresBar, s.PressurePa/1e5)
		export.Phases = append(export.Phases, s.Phase)
	}

	return export
}

func writeJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
