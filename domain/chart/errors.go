package chart

import (
	"errors"
	"fmt"
)

// Chart errors
var (
	ErrUnknownKind   = errors.New("unknown chart type")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotNumeric    = errors.New("column is not numeric")
	ErrNoData        = errors.New("no plottable rows")
	ErrNegativeSlice = errors.New("pie values must not be negative")
)

func unknownColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

func fmtNotNumeric(column, value string) error {
	return fmt.Errorf("%w: %q has value %q", ErrNotNumeric, column, value)
}
