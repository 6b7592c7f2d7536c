// Package plot renders temperature and pressure curves of a cycle trace to
// PNG files: one line per quantity against crank angle, with stroke
// boundaries and the peak sample marked.
package plot

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Katakuri004/HT-Project-Scripts/internal/config"
	"github.com/Katakuri004/HT-Project-Scripts/pkg/cycle"
)

// strokeBoundaries are the crank angles separating the four strokes.
var strokeBoundaries = []float64{180, 360, 540}

// Renderer draws cycle traces into the configured output directory.
type Renderer struct {
	cfg config.PlotConfig
}

// NewRenderer creates a renderer with the given plot configuration.
func NewRenderer(cfg config.PlotConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render writes temperature and pressure PNGs for the trace and returns the
// written paths. The label prefixes the filenames.
func (r *Renderer) Render(label string, t *cycle.Trace) ([]string, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("empty trace")
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	label = sanitizeLabel(label)

	tempPath := filepath.Join(r.cfg.OutputDir, label+"_temperature.png")
	if err := r.renderCurve(tempPath, "Temperature vs Crank Angle", "Temperature (°C)",
		t.AnglesDeg, t.TemperaturesCelsius(), color.RGBA{R: 200, G: 30, B: 30, A: 255}); err != nil {
		return nil, err
	}

	pressPath := filepath.Join(r.cfg.OutputDir, label+"_pressure.png")
	if err := r.renderCurve(pressPath, "Pressure vs Crank Angle", "Pressure (bar)",
		t.AnglesDeg, t.PressuresBar(), color.RGBA{R: 30, G: 30, B: 200, A: 255}); err != nil {
		return nil, err
	}

	return []string{tempPath, pressPath}, nil
}

// renderCurve draws one quantity against crank angle with stroke boundaries
// and a marker on the peak sample.
func (r *Renderer) renderCurve(path, title, ylabel string, xs, ys []float64, lineColor color.RGBA) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Crank Angle (degrees)"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	stylePlot(p)

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2.0)
	line.LineStyle.Color = lineColor
	p.Add(line)

	yMin, yMax := bounds(ys)
	for _, boundary := range strokeBoundaries {
		marker, err := plotter.NewLine(plotter.XYs{
			{X: boundary, Y: yMin},
			{X: boundary, Y: yMax},
		})
		if err != nil {
			return err
		}
		marker.LineStyle.Width = vg.Points(1.0)
		marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		marker.LineStyle.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
		p.Add(marker)
	}

	peakIdx := argmax(ys)
	peak, err := plotter.NewScatter(plotter.XYs{{X: xs[peakIdx], Y: ys[peakIdx]}})
	if err != nil {
		return err
	}
	peak.GlyphStyle.Radius = vg.Points(4)
	peak.GlyphStyle.Shape = draw.CircleGlyph{}
	peak.GlyphStyle.Color = lineColor
	p.Add(peak)

	return r.savePNG(p, path)
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)

	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	// crank angles read naturally on a 90° grid
	p.X.Tick.Marker = plot.ConstantTicks(angleTicks())
}

func angleTicks() []plot.Tick {
	ticks := make([]plot.Tick, 0, 9)
	for a := 0.0; a <= 720; a += 90 {
		ticks = append(ticks, plot.Tick{Value: a, Label: fmt.Sprintf("%.0f", a)})
	}
	return ticks
}

func (r *Renderer) savePNG(p *plot.Plot, path string) error {
	w := vg.Length(r.cfg.WidthCm) * vg.Centimeter
	h := vg.Length(r.cfg.HeightCm) * vg.Centimeter

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(150),
	)
	dc := draw.New(c)
	p.Draw(dc)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, " ", "_")
	return strings.ReplaceAll(label, ":", "_")
}

func bounds(ys []float64) (min, max float64) {
	min, max = ys[0], ys[0]
	for _, y := range ys[1:] {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	return min, max
}

func argmax(ys []float64) int {
	best := 0
	for i, y := range ys {
		if y > ys[best] {
			best = i
		}
	}
	return best
}
