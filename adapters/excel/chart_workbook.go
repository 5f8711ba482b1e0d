package excel

import (
	"bytes"
	"fmt"

	"tidytab/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	ChartSheet     = "Charts"
	chartRowStride = 20
)

// ChartWorkbookExporter lays chart PNGs out down a single sheet
type ChartWorkbookExporter struct{}

// NewChartWorkbookExporter creates a chart workbook exporter
func NewChartWorkbookExporter() *ChartWorkbookExporter {
	return &ChartWorkbookExporter{}
}

// Export places one image every chartRowStride rows in column A
func (e *ChartWorkbookExporter) Export(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, errors.InvalidInput("No charts to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ChartSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, img := range images {
		cell := fmt.Sprintf("A%d", i*chartRowStride+1)
		err := f.AddPictureFromBytes(ChartSheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      img,
			Format:    &excelize.GraphicOptions{ScaleX: 0.5, ScaleY: 0.5},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add chart %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
