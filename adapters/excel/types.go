package excel

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported tabular file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentTypes for downloads
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// extensionFormats lists the readable extensions. Legacy BIFF .xls workbooks
// are left out because excelize only opens Office Open XML packages.
var extensionFormats = map[string]Format{
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
}

// FormatForFilename maps a filename extension to its format
func FormatForFilename(filename string) (Format, bool) {
	format, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]
	return format, ok
}
