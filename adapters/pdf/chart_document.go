package pdf

import (
	"bytes"
	"fmt"

	"tidytab/internal/errors"

	"github.com/go-pdf/fpdf"
)

// Layout of the chart document, in points
const (
	chartMargin      = 40.0
	chartGap         = 20.0
	chartAspectRatio = 0.6
)

// ChartDocumentExporter stacks chart PNGs down A4 pages
type ChartDocumentExporter struct{}

// NewChartDocumentExporter creates a chart PDF exporter
func NewChartDocumentExporter() *ChartDocumentExporter {
	return &ChartDocumentExporter{}
}

// Export draws every image in a full-width box whose height is 0.6 of its
// width. A new page starts when the next box would cross the bottom margin.
// Images keep their aspect ratio and are centered in the box.
func (e *ChartDocumentExporter) Export(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, errors.InvalidInput("No charts to export")
	}

	doc := fpdf.New("P", "pt", "A4", "")
	pageWidth, pageHeight := doc.GetPageSize()
	boxWidth := pageWidth - 2*chartMargin
	boxHeight := boxWidth * chartAspectRatio

	doc.AddPage()
	y := chartMargin
	for i, img := range images {
		if y+boxHeight > pageHeight-chartMargin {
			doc.AddPage()
			y = chartMargin
		}

		name := fmt.Sprintf("chart-%d", i)
		info := doc.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("failed to load chart %d: %w", i+1, err)
		}

		w, h := fit(info.Width(), info.Height(), boxWidth, boxHeight)
		x := chartMargin + (boxWidth-w)/2
		doc.ImageOptions(name, x, y+(boxHeight-h)/2, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		y += boxHeight + chartGap
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales w×h to the largest size inside maxW×maxH with the same ratio
func fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := maxW / w
	if h*scale > maxH {
		scale = maxH / h
	}
	return w * scale, h * scale
}
