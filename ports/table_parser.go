package ports

import "tidytab/domain/table"

// TableParser turns uploaded bytes into a raw table, choosing the format from
// the filename extension.
type TableParser interface {
	Supports(filename string) bool
	Parse(filename string, content []byte) (*table.Raw, error)
}
