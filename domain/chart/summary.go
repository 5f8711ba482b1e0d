package chart

import (
	"strconv"
	"strings"

	"tidytab/domain/table"

	"github.com/montanaflynn/stats"
)

// ColumnSummary describes a column to help choose chart axes
type ColumnSummary struct {
	Name     string   `json:"name"`
	Numeric  bool     `json:"numeric"`
	Count    int      `json:"count"`
	Distinct int      `json:"distinct"`
	Mean     *float64 `json:"mean,omitempty"`
	Median   *float64 `json:"median,omitempty"`
	StdDev   *float64 `json:"std_dev,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Summarize profiles every column of the table
func Summarize(t *table.Table) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.Columns))
	for _, col := range t.Columns {
		out = append(out, summarizeColumn(col))
	}
	return out
}

func summarizeColumn(col table.Column) ColumnSummary {
	summary := ColumnSummary{Name: col.Name, Numeric: true}
	distinct := make(map[string]bool)
	var data []float64

	for _, v := range col.Values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		summary.Count++
		distinct[v] = true
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			summary.Numeric = false
			continue
		}
		data = append(data, f)
	}
	summary.Distinct = len(distinct)

	if !summary.Numeric || len(data) == 0 {
		summary.Numeric = summary.Numeric && len(data) > 0
		return summary
	}

	// Calculate basic summary statistics
	summary.Mean = stat(stats.Mean(data))
	summary.Median = stat(stats.Median(data))
	summary.StdDev = stat(stats.StandardDeviation(data))
	summary.Min = stat(stats.Min(data))
	summary.Max = stat(stats.Max(data))
	return summary
}

func stat(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return &v
}
