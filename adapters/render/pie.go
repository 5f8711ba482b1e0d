package render

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws values as slices of a circle filling the data area.
// Slices start at twelve o'clock and run counter-clockwise.
type pieChart struct {
	values []float64
	colors []color.Color
}

func newPieChart(values []float64) *pieChart {
	colors := make([]color.Color, len(values))
	for i := range values {
		colors[i] = plotutil.Color(i)
	}
	return &pieChart{values: values, colors: colors}
}

// Plot implements plot.Plotter
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := floats.Sum(pc.values)
	if total <= 0 {
		return
	}

	size := c.Size()
	radius := vg.Length(math.Min(float64(size.X), float64(size.Y))) / 2 * 0.9
	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}

	start := math.Pi / 2
	for i, v := range pc.values {
		if v == 0 {
			continue
		}
		angle := 2 * math.Pi * v / total

		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, angle)
		path.Close()

		c.SetColor(pc.colors[i])
		c.Fill(path)
		start += angle
	}
}

// Thumbnail returns the legend swatch for slice i
func (pc *pieChart) Thumbnail(i int) plot.Thumbnailer {
	return sliceThumb{color: pc.colors[i]}
}

type sliceThumb struct {
	color color.Color
}

func (t sliceThumb) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(t.color, c.ClipPolygonY(pts))
}
