package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"tidytab/domain/table"
	"tidytab/internal/errors"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader parses uploaded CSV and Excel files into raw tables
type DataReader struct {
	config  ExcelConfig
	missing map[string]bool
}

// NewDataReader creates a data reader with the default configuration
func NewDataReader() *DataReader {
	return NewDataReaderWithConfig(DefaultExcelConfig())
}

// NewDataReaderWithConfig creates a data reader with a custom configuration
func NewDataReaderWithConfig(config ExcelConfig) *DataReader {
	missing := make(map[string]bool, len(config.MissingTokens))
	for _, token := range config.MissingTokens {
		missing[token] = true
	}
	return &DataReader{config: config, missing: missing}
}

// Supports reports whether the filename has an accepted extension
func (r *DataReader) Supports(filename string) bool {
	_, ok := FormatForFilename(filename)
	return ok
}

// Parse reads content according to the filename's extension.
// The first row is the header; every other row is data.
func (r *DataReader) Parse(filename string, content []byte) (*table.Raw, error) {
	format, ok := FormatForFilename(filename)
	if !ok {
		return nil, errors.UnsupportedFormat(filename)
	}

	startTime := time.Now()
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = r.readCSV(content)
	case FormatXLSX:
		rows, err = r.readWorkbook(content)
	}
	if err != nil {
		return nil, errors.ParseError(string(format), err)
	}
	if len(rows) == 0 {
		return nil, errors.ParseError(string(format), fmt.Errorf("file has no header row"))
	}

	raw := r.toRaw(rows)
	log.Printf("[DataReader] %s parsed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(string(format)), float64(time.Since(startTime).Nanoseconds())/1e6,
		len(raw.Headers), len(raw.Rows))
	return raw, nil
}

func (r *DataReader) readCSV(content []byte) ([][]string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readWorkbook(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// toRaw splits off the header and maps missing-value tokens in data cells to ""
func (r *DataReader) toRaw(rows [][]string) *table.Raw {
	raw := &table.Raw{
		Headers: append([]string(nil), rows[0]...),
		Rows:    make([][]string, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			if r.missing[strings.TrimSpace(cell)] {
				continue
			}
			cells[j] = cell
		}
		raw.Rows = append(raw.Rows, cells)
	}
	return raw
}
