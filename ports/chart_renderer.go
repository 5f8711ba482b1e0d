package ports

import (
	"tidytab/domain/chart"
	"tidytab/domain/table"
)

// ChartRenderer draws a chart of t as a PNG image
type ChartRenderer interface {
	Render(spec chart.Spec, t *table.Table) ([]byte, error)
}

// ChartExporter packs rendered chart images into one downloadable document
type ChartExporter interface {
	Export(images [][]byte) ([]byte, error)
}
