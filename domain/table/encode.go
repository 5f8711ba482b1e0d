package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// MissingMarker is written in place of every empty or whitespace-only cell
const MissingMarker = "NaN"

// ExportCell returns the exported form of a cell
func ExportCell(value string) string {
	if strings.TrimSpace(value) == "" {
		return MissingMarker
	}
	return value
}

// EncodeCSV writes the table as UTF-8 comma-separated text with a header row.
// Column and row order are preserved.
func EncodeCSV(w io.Writer, t *Table) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid table: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for r := 0; r < t.RowCount(); r++ {
		for c, col := range t.Columns {
			record[c] = ExportCell(col.Values[r])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
