package excel

import (
	"bytes"

	"tidytab/domain/table"
	"tidytab/ports"
)

// CSVEncoder exports tables as comma-separated text
type CSVEncoder struct{}

func (CSVEncoder) Encode(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := table.EncodeCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (CSVEncoder) ContentType() string { return ContentTypeCSV }
func (CSVEncoder) Extension() string   { return ".csv" }

// WorkbookEncoder exports tables as xlsx workbooks
type WorkbookEncoder struct{}

func (WorkbookEncoder) Encode(t *table.Table) ([]byte, error) {
	return EncodeWorkbook(t)
}

func (WorkbookEncoder) ContentType() string { return ContentTypeXLSX }
func (WorkbookEncoder) Extension() string   { return ".xlsx" }

// Encoders returns the table encoders keyed by export format
func Encoders() map[string]ports.TableEncoder {
	return map[string]ports.TableEncoder{
		string(FormatCSV):  CSVEncoder{},
		string(FormatXLSX): WorkbookEncoder{},
	}
}
