package excel

import "tidytab/domain/table"

// ExcelConfig holds configuration for reading uploaded tables
type ExcelConfig struct {
	// Sheet to read from workbooks. Empty means the first sheet.
	Sheet string `json:"sheet"`
	// MissingTokens are cell values read as missing (compared after trimming).
	MissingTokens []string `json:"missing_tokens"`
}

// DefaultExcelConfig returns sensible defaults for table parsing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		MissingTokens: []string{
			"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
			"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
			"n/a", "nan", "null",
		},
	}
}

// ExportedTableConfig reads files written by the table encoders. Those only
// ever mark missing cells with table.MissingMarker, so cleaned text such as
// "NA" or "None" stays a value.
func ExportedTableConfig() ExcelConfig {
	return ExcelConfig{
		MissingTokens: []string{table.MissingMarker},
	}
}
