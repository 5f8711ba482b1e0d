package table

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize produces the canonical cleaned table:
//
//  1. rows where every cell is empty are dropped
//  2. columns where every cell is empty are dropped
//  3. headers are trimmed, lowercased, whitespace runs become "_" and anything
//     outside [0-9a-zA-Z_] is removed
//  4. cells of text columns keep only [0-9a-zA-Z ] and are trimmed
//
// Emptiness is judged on the canonical cell text, so Normalize is idempotent.
// Row and column order are preserved.
func Normalize(raw *Raw) *Table {
	src := FromRaw(&Raw{Headers: raw.Headers, Rows: raw.Rows})
	width := len(src.Columns)
	rows := src.RowCount()

	canonical := make([][]string, width)
	for c, col := range src.Columns {
		canonical[c] = canonicalColumn(col.Values)
	}

	keepRows := make([]int, 0, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < width; c++ {
			if canonical[c][r] != "" {
				keepRows = append(keepRows, r)
				break
			}
		}
	}

	var names []string
	var columns [][]string
	for c := 0; c < width; c++ {
		values := make([]string, len(keepRows))
		empty := true
		for i, r := range keepRows {
			values[i] = canonical[c][r]
			if values[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}

		header := ""
		if c < len(raw.Headers) {
			header = SanitizeHeader(raw.Headers[c])
		}
		if header == "" {
			header = "unnamed_" + strconv.Itoa(c)
		}
		names = append(names, header)
		columns = append(columns, values)
	}

	names = disambiguate(names)
	out := &Table{Columns: make([]Column, len(names))}
	for i := range names {
		out.Columns[i] = Column{Name: names[i], Values: columns[i]}
	}
	return out
}

// SanitizeHeader applies the header rules of Normalize to a single name
func SanitizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = whitespaceRun.ReplaceAllString(name, "_")
	return strings.Map(func(r rune) rune {
		if isASCIIAlnum(r) || r == '_' {
			return r
		}
		return -1
	}, name)
}

// SanitizeCell applies the text-cell rules of Normalize to a single value
func SanitizeCell(value string) string {
	value = strings.Map(func(r rune) rune {
		if isASCIIAlnum(r) || r == ' ' {
			return r
		}
		return -1
	}, strings.TrimSpace(value))
	return strings.TrimSpace(value)
}

// IsNumeric reports whether a trimmed cell parses as a number
func IsNumeric(value string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil
}

// canonicalColumn trims numeric columns and sanitizes text columns.
// A column is numeric when every non-empty cell parses as a number.
func canonicalColumn(values []string) []string {
	numeric := true
	for _, v := range values {
		if strings.TrimSpace(v) != "" && !IsNumeric(v) {
			numeric = false
			break
		}
	}

	out := make([]string, len(values))
	for i, v := range values {
		if numeric {
			out[i] = strings.TrimSpace(v)
		} else {
			out[i] = SanitizeCell(v)
		}
	}
	return out
}

func isASCIIAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
