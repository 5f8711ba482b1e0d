package ports

import "tidytab/domain/table"

// TableEncoder writes a cleaned table as a downloadable file
type TableEncoder interface {
	Encode(t *table.Table) ([]byte, error)
	ContentType() string
	Extension() string
}
