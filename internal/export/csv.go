// Package export writes cycle traces to CSV files mirroring the spreadsheet
// layout: a sampled-data sheet, a key-metrics summary, and a per-stroke
// aggregate.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Katakuri004/HT-Project-Scripts/pkg/cycle"
)

// strokeOrder fixes the row order of the stroke summary.
var strokeOrder = []string{"Intake", "Compression", "Power", "Exhaust"}

// WriteTrace writes the sampled trace as CSV: time, crank angle, temperature
// in Celsius, pressure in bar, and the mechanical stroke label.
func WriteTrace(w io.Writer, t *cycle.Trace, rpm float64) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Time (seconds)",
		"Crank Angle (degrees)",
		"Temperature (°C)",
		"Pressure (bar)",
		"Stroke",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	times := t.TimeAxis(rpm)
	tempsC := t.TemperaturesCelsius()
	pressuresBar := t.PressuresBar()

	for i := range t.AnglesDeg {
		row := []string{
			fmt.Sprintf("%.4f", times[i]),
			fmt.Sprintf("%.1f", t.AnglesDeg[i]),
			fmt.Sprintf("%.4f", tempsC[i]),
			fmt.Sprintf("%.4f", pressuresBar[i]),
			cycle.StrokeLabel(t.AnglesDeg[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the key metrics of a trace as Metric,Value rows.
func WriteSummary(w io.Writer, t *cycle.Trace, rpm float64) error {
	cw := csv.NewWriter(w)

	tempsC := t.TemperaturesCelsius()
	pressuresBar := t.PressuresBar()
	cycleSeconds := 2 * 60.0 / rpm

	interval := 0.0
	if t.Len() > 1 {
		interval = t.AnglesDeg[1] - t.AnglesDeg[0]
	}

	rows := [][]string{
		{"Metric", "Value"},
		{"Engine Speed", fmt.Sprintf("%.0f RPM", rpm)},
		{"Cycle Duration", fmt.Sprintf("%.4f seconds", cycleSeconds)},
		{"Number of Sample Points", fmt.Sprintf("%d points", t.Len())},
		{"Sampling Interval", fmt.Sprintf("%.1f degrees", interval)},
		{"Peak Temperature", fmt.Sprintf("%.4f °C", maxOf(tempsC))},
		{"Minimum Temperature", fmt.Sprintf("%.4f °C", minOf(tempsC))},
		{"Peak Pressure", fmt.Sprintf("%.4f bar", maxOf(pressuresBar))},
		{"Minimum Pressure", fmt.Sprintf("%.4f bar", minOf(pressuresBar))},
		{"Average Temperature", fmt.Sprintf("%.4f °C", meanOf(tempsC))},
		{"Average Pressure", fmt.Sprintf("%.4f bar", meanOf(pressuresBar))},
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteStrokeSummary writes per-stroke mean/min/max of temperature and
// pressure.
func WriteStrokeSummary(w io.Writer, t *cycle.Trace) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Stroke",
		"Temperature Mean (°C)", "Temperature Min (°C)", "Temperature Max (°C)",
		"Pressure Mean (bar)", "Pressure Min (bar)", "Pressure Max (bar)",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	tempsC := t.TemperaturesCelsius()
	pressuresBar := t.PressuresBar()

	groups := make(map[string]*strokeStats)
	for i := range t.AnglesDeg {
		label := cycle.StrokeLabel(t.AnglesDeg[i])
		stats, ok := groups[label]
		if !ok {
			stats = &strokeStats{}
			groups[label] = stats
		}
		stats.add(tempsC[i], pressuresBar[i])
	}

	for _, label := range strokeOrder {
		stats, ok := groups[label]
		if !ok {
			continue
		}
		row := []string{
			label,
			fmt.Sprintf("%.4f", stats.tempSum/float64(stats.n)),
			fmt.Sprintf("%.4f", stats.tempMin),
			fmt.Sprintf("%.4f", stats.tempMax),
			fmt.Sprintf("%.4f", stats.pressSum/float64(stats.n)),
			fmt.Sprintf("%.4f", stats.pressMin),
			fmt.Sprintf("%.4f", stats.pressMax),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Files writes the trace, summary, and stroke-summary CSVs to outputDir and
// returns the written paths.
func Files(outputDir, label string, t *cycle.Trace, rpm float64) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	label = sanitizeLabel(label)

	type part struct {
		suffix string
		write  func(io.Writer) error
	}
	parts := []part{
		{"trace", func(w io.Writer) error { return WriteTrace(w, t, rpm) }},
		{"summary", func(w io.Writer) error { return WriteSummary(w, t, rpm) }},
		{"strokes", func(w io.Writer) error { return WriteStrokeSummary(w, t) }},
	}

	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		path := filepath.Join(outputDir, fmt.Sprintf("%s_%s.csv", label, p.suffix))
		if err := writeFile(path, p.write); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, " ", "_")
	return strings.ReplaceAll(label, ":", "_")
}

type strokeStats struct {
	n                            int
	tempSum, tempMin, tempMax    float64
	pressSum, pressMin, pressMax float64
}

func (s *strokeStats) add(tempC, pressureBar float64) {
	if s.n == 0 {
		s.tempMin, s.tempMax = tempC, tempC
		s.pressMin, s.pressMax = pressureBar, pressureBar
	}
	s.n++
	s.tempSum += tempC
	s.pressSum += pressureBar
	if tempC < s.tempMin {
		s.tempMin = tempC
	}
	if tempC > s.tempMax {
		s.tempMax = tempC
	}
	if pressureBar < s.pressMin {
		s.pressMin = pressureBar
	}
	if pressureBar > s.pressMax {
		s.pressMax = pressureBar
	}
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	best := xs[0]
	for _, x := range xs[1:] {
		if x > best {
			best = x
		}
	}
	return best
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	best := xs[0]
	for _, x := range xs[1:] {
		if x < best {
			best = x
		}
	}
	return best
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
