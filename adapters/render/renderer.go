package render

import (
	"bytes"
	"fmt"
	"log"

	"tidytab/domain/chart"
	"tidytab/domain/table"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Default canvas size; the PNG is rendered at plot's default DPI.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// PlotRenderer draws chart specs as PNG images with gonum/plot
type PlotRenderer struct {
	width  vg.Length
	height vg.Length
}

// NewPlotRenderer creates a renderer with the default canvas size
func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{width: DefaultWidth, height: DefaultHeight}
}

// Render aggregates the table according to spec and returns PNG bytes
func (r *PlotRenderer) Render(spec chart.Spec, t *table.Table) ([]byte, error) {
	series, err := chart.Aggregate(spec, t)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = spec.Title()

	switch spec.Kind {
	case chart.KindBar:
		err = drawBars(p, series)
	case chart.KindLine:
		err = drawLine(p, series)
	case chart.KindScatter:
		err = drawScatter(p, series)
	case chart.KindPie:
		err = drawPie(p, series)
	default:
		err = chart.ErrUnknownKind
	}
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render png: %w", err)
	}

	log.Printf("[PlotRenderer] Rendered %s chart %s/%s (%d points, %d bytes)",
		spec.Kind, spec.X, spec.Y, series.Len(), buf.Len())
	return buf.Bytes(), nil
}

func drawBars(p *plot.Plot, s *chart.Series) error {
	bars, err := plotter.NewBarChart(plotter.Values(s.Y), vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars, plotter.NewGrid())
	p.NominalX(s.Labels...)
	label(p, s)
	return nil
}

func drawLine(p *plot.Plot, s *chart.Series) error {
	line, points, err := plotter.NewLinePoints(xys(s))
	if err != nil {
		return fmt.Errorf("failed to build line chart: %w", err)
	}
	line.Color = plotutil.Color(0)
	points.Color = plotutil.Color(0)
	p.Add(line, points, plotter.NewGrid())
	if s.Categorical() {
		p.NominalX(s.Labels...)
	}
	label(p, s)
	return nil
}

func drawScatter(p *plot.Plot, s *chart.Series) error {
	scatter, err := plotter.NewScatter(xys(s))
	if err != nil {
		return fmt.Errorf("failed to build scatter chart: %w", err)
	}
	scatter.Color = plotutil.Color(0)
	p.Add(scatter, plotter.NewGrid())
	if s.Categorical() {
		p.NominalX(s.Labels...)
	}
	label(p, s)
	return nil
}

func drawPie(p *plot.Plot, s *chart.Series) error {
	pie := newPieChart(s.Y)
	p.Add(pie)
	p.HideAxes()
	p.Legend.Top = true
	for i, share := range s.Shares() {
		p.Legend.Add(fmt.Sprintf("%s (%.1f%%)", s.Labels[i], share), pie.Thumbnail(i))
	}
	return nil
}

func label(p *plot.Plot, s *chart.Series) {
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
}

func xys(s *chart.Series) plotter.XYs {
	pts := make(plotter.XYs, s.Len())
	for i := range pts {
		pts[i].X = s.X[i]
		pts[i].Y = s.Y[i]
	}
	return pts
}
