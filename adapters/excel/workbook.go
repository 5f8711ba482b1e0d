package excel

import (
	"bytes"
	"fmt"

	"tidytab/domain/table"

	"github.com/xuri/excelize/v2"
)

// CleanedSheet is the sheet name used for exported tables
const CleanedSheet = "cleaned_data"

// EncodeWorkbook writes the table as a single-sheet xlsx workbook.
// Missing cells are written as table.MissingMarker, matching the CSV export.
func EncodeWorkbook(t *table.Table) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CleanedSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(CleanedSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for j, col := range t.Columns {
		header[j] = col.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < t.RowCount(); i++ {
		row := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			row[j] = table.ExportCell(col.Values[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
