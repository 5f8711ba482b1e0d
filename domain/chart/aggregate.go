package chart

import (
	"sort"
	"strconv"
	"strings"

	"tidytab/domain/table"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// Series is the plottable data behind a chart.
//
// Bar and pie charts use Labels and Y. Line and scatter charts use X and Y;
// when the x column is not numeric, X holds category positions and Labels
// names the categories in position order.
type Series struct {
	Kind   Kind
	XLabel string
	YLabel string
	Labels []string
	X      []float64
	Y      []float64
}

// Len returns the number of points or categories
func (s *Series) Len() int {
	return len(s.Y)
}

// Categorical reports whether the x axis carries category names
func (s *Series) Categorical() bool {
	return len(s.Labels) > 0
}

type point struct {
	x string
	y float64
}

// Aggregate turns the spec's columns into a series:
//
//   - bar: mean of y per x value, in order of first appearance
//   - line: mean of y per x value, ordered by x
//   - scatter: every row with a numeric y
//   - pie: sum of y per x value, ordered by x
//
// Rows whose y cell is empty are skipped.
func Aggregate(spec Spec, t *table.Table) (*Series, error) {
	xcol, ok := t.Column(spec.X)
	if !ok {
		return nil, unknownColumn(spec.X)
	}
	ycol, ok := t.Column(spec.Y)
	if !ok {
		return nil, unknownColumn(spec.Y)
	}

	points := make([]point, 0, len(ycol.Values))
	for i, raw := range ycol.Values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		y, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmtNotNumeric(spec.Y, raw)
		}
		points = append(points, point{x: strings.TrimSpace(xcol.Values[i]), y: y})
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}

	series := &Series{Kind: spec.Kind, XLabel: spec.X, YLabel: spec.Y}
	switch spec.Kind {
	case KindBar:
		keys, groups := group(points)
		return series, series.reduce(keys, groups, mean)
	case KindLine:
		keys, groups := group(points)
		sortKeys(keys)
		if err := series.reduce(keys, groups, mean); err != nil {
			return nil, err
		}
		series.X, series.Labels = positions(keys)
		return series, nil
	case KindPie:
		keys, groups := group(points)
		sortKeys(keys)
		if err := series.reduce(keys, groups, sum); err != nil {
			return nil, err
		}
		for _, v := range series.Y {
			if v < 0 {
				return nil, ErrNegativeSlice
			}
		}
		if floats.Sum(series.Y) == 0 {
			return nil, ErrNoData
		}
		return series, nil
	case KindScatter:
		xs := make([]string, len(points))
		for i, p := range points {
			xs[i] = p.x
			series.Y = append(series.Y, p.y)
		}
		series.X, series.Labels = positions(xs)
		return series, nil
	default:
		return nil, ErrUnknownKind
	}
}

// Shares returns each pie slice as a percentage of the total
func (s *Series) Shares() []float64 {
	total := floats.Sum(s.Y)
	out := make([]float64, len(s.Y))
	if total == 0 {
		return out
	}
	floats.ScaleTo(out, 100/total, s.Y)
	return out
}

func (s *Series) reduce(keys []string, groups map[string][]float64, fn func([]float64) (float64, error)) error {
	s.Labels = keys
	s.Y = make([]float64, len(keys))
	for i, k := range keys {
		v, err := fn(groups[k])
		if err != nil {
			return err
		}
		s.Y[i] = v
	}
	return nil
}

// positions maps x values to coordinates. Numeric values are used as they
// are; otherwise each distinct value is placed at the index of its first
// appearance and the distinct values are returned as labels.
func positions(xs []string) ([]float64, []string) {
	coords := make([]float64, len(xs))
	numeric := true
	for i, x := range xs {
		v, err := strconv.ParseFloat(x, 64)
		if err != nil {
			numeric = false
			break
		}
		coords[i] = v
	}
	if numeric {
		return coords, nil
	}

	var labels []string
	index := make(map[string]int)
	for i, x := range xs {
		pos, seen := index[x]
		if !seen {
			pos = len(labels)
			index[x] = pos
			labels = append(labels, x)
		}
		coords[i] = float64(pos)
	}
	return coords, labels
}

func group(points []point) ([]string, map[string][]float64) {
	var keys []string
	groups := make(map[string][]float64)
	for _, p := range points {
		if _, seen := groups[p.x]; !seen {
			keys = append(keys, p.x)
		}
		groups[p.x] = append(groups[p.x], p.y)
	}
	return keys, groups
}

// sortKeys orders keys numerically when they all parse, otherwise lexically
func sortKeys(keys []string) {
	nums := make(map[string]float64, len(keys))
	for _, k := range keys {
		v, err := strconv.ParseFloat(k, 64)
		if err != nil {
			sort.Strings(keys)
			return
		}
		nums[k] = v
	}
	sort.SliceStable(keys, func(i, j int) bool { return nums[keys[i]] < nums[keys[j]] })
}

func mean(values []float64) (float64, error) {
	return stats.Mean(values)
}

func sum(values []float64) (float64, error) {
	return floats.Sum(values), nil
}
