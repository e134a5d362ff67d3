package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/geohash/internal/geoindex"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PointSeries is one named set of local-coordinate points to plot.
type PointSeries struct {
	Name   string
	Points []geoindex.Point
}

// Axis selects which pair of local coordinates a plot shows.
type Axis int

const (
	// AxisXY projects onto the frame's first two basis vectors, the plane
	// of the defining triple.
	AxisXY Axis = iota
	// AxisXZ projects onto the first and third basis vectors.
	AxisXZ
)

// PlotLocalPoints writes a scatter plot of the series projected onto axis
// to path. The image format follows the file extension (.png, .svg, .pdf).
// binSize > 0 draws grid lines on bin edges.
func PlotLocalPoints(path, title string, axis Axis, binSize float64, series []PointSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "local x"
	p.Y.Label.Text = "local y"
	if axis == AxisXZ {
		p.Y.Label.Text = "local z"
	}
	if binSize > 0 {
		grid := plotter.NewGrid()
		grid.Horizontal.Color = color.Gray{Y: 220}
		grid.Vertical.Color = color.Gray{Y: 220}
		p.Add(grid)
		p.X.Tick.Marker = binTicks{size: binSize}
		p.Y.Tick.Marker = binTicks{size: binSize}
	}

	colors := generateColors(len(series))
	for i, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = pt.X
			xys[j].Y = pt.Y
			if axis == AxisXZ {
				xys[j].Y = pt.Z
			}
		}

		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		sc.GlyphStyle.Color = colors[i]
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(s.Name, sc)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// binTicks places major ticks on multiples of the bin size.
type binTicks struct {
	size float64
}

// Ticks implements plot.Ticker.
func (b binTicks) Ticks(min, max float64) []plot.Tick {
	const maxTicks = 40
	step := b.size
	for (max-min)/step > maxTicks {
		step *= 2
	}

	var ticks []plot.Tick
	start := float64(int64(min/step)) * step
	if start > min {
		start -= step
	}
	for v := start; v <= max; v += step {
		if v < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%g", v)})
	}
	return ticks
}

// generateColors creates a palette of distinct colors for plot series
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
