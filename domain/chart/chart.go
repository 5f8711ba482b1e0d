package chart

import (
	"fmt"
	"strings"
)

// Kind is the type of chart to draw
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
	KindPie     Kind = "pie"
)

// Kinds lists the supported chart kinds in display order
var Kinds = []Kind{KindBar, KindLine, KindScatter, KindPie}

// ParseKind parses a chart type name, case-insensitively
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Spec describes one chart request
type Spec struct {
	Kind Kind   `json:"kind"`
	X    string `json:"x"`
	Y    string `json:"y"`
}

// Title is the caption drawn above the chart
func (s Spec) Title() string {
	switch s.Kind {
	case KindPie:
		return fmt.Sprintf("%s by %s", s.Y, s.X)
	case KindScatter:
		return fmt.Sprintf("%s vs %s", s.Y, s.X)
	default:
		return fmt.Sprintf("mean %s by %s", s.Y, s.X)
	}
}

// Chart is a rendered chart kept in the visualization session
type Chart struct {
	Spec
	PNG []byte `json:"png"`
}
