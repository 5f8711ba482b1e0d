package table

import (
	"fmt"
	"strconv"
)

// Raw is a table exactly as a parser produced it. Missing cells are empty strings.
type Raw struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Column is a named, ordered sequence of cells held as canonical text
type Column struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Table is an ordered sequence of columns of equal length
type Table struct {
	Columns []Column `json:"columns"`
}

// Preview is a rectangular window over a table, in row-major order
type Preview struct {
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	RowCount    int        `json:"row_count"`
	ColumnCount int        `json:"column_count"`
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Validate checks the equal-length and unique-name invariants
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	rows := t.RowCount()
	for _, col := range t.Columns {
		if seen[col.Name] {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true
		if len(col.Values) != rows {
			return fmt.Errorf("column %q has %d values, expected %d", col.Name, len(col.Values), rows)
		}
	}
	return nil
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, col := range t.Columns {
		out.Columns[i] = Column{Name: col.Name, Values: append([]string(nil), col.Values...)}
	}
	return out
}

// DropColumns returns a new table without the named columns. Unknown names are ignored.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}

	out := &Table{Columns: make([]Column, 0, len(t.Columns))}
	for _, col := range t.Columns {
		if drop[col.Name] {
			continue
		}
		out.Columns = append(out.Columns, Column{Name: col.Name, Values: append([]string(nil), col.Values...)})
	}
	return out
}

// Head returns the first maxRows rows of the first maxCols columns.
// A non-positive limit means no limit on that axis.
func (t *Table) Head(maxRows, maxCols int) Preview {
	cols := t.Columns
	if maxCols > 0 && len(cols) > maxCols {
		cols = cols[:maxCols]
	}
	rows := t.RowCount()
	if maxRows > 0 && rows > maxRows {
		rows = maxRows
	}

	preview := Preview{
		Columns:     make([]string, len(cols)),
		Rows:        make([][]string, rows),
		RowCount:    t.RowCount(),
		ColumnCount: len(t.Columns),
	}
	for i, col := range cols {
		preview.Columns[i] = col.Name
	}
	for r := 0; r < rows; r++ {
		row := make([]string, len(cols))
		for c, col := range cols {
			row[c] = col.Values[r]
		}
		preview.Rows[r] = row
	}
	return preview
}

// Raw converts the table back into parser shape
func (t *Table) Raw() *Raw {
	raw := &Raw{Headers: t.ColumnNames(), Rows: make([][]string, t.RowCount())}
	for r := range raw.Rows {
		row := make([]string, len(t.Columns))
		for c, col := range t.Columns {
			row[c] = col.Values[r]
		}
		raw.Rows[r] = row
	}
	return raw
}

// FromRaw builds a table without normalizing cell content. Ragged rows are padded,
// empty headers are named by position and repeated headers are suffixed.
func FromRaw(raw *Raw) *Table {
	width := len(raw.Headers)
	for _, row := range raw.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	names := make([]string, width)
	for i := range names {
		if i < len(raw.Headers) {
			names[i] = raw.Headers[i]
		}
		if names[i] == "" {
			names[i] = "unnamed_" + strconv.Itoa(i)
		}
	}
	names = disambiguate(names)

	t := &Table{Columns: make([]Column, width)}
	for c := range t.Columns {
		t.Columns[c] = Column{Name: names[c], Values: make([]string, len(raw.Rows))}
	}
	for r, row := range raw.Rows {
		for c := 0; c < len(row) && c < width; c++ {
			t.Columns[c].Values[r] = row[c]
		}
	}
	return t
}

// disambiguate keeps the first occurrence of each name and suffixes later ones with
// _2, _3, ... skipping any suffix that already names another column.
func disambiguate(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}

	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, name := range names {
		if !used[name] {
			out[i] = name
			used[name] = true
			continue
		}
		for n := 2; ; n++ {
			candidate := name + "_" + strconv.Itoa(n)
			if !used[candidate] && !taken[candidate] {
				out[i] = candidate
				used[candidate] = true
				break
			}
		}
	}
	return out
}
