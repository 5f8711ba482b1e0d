package table

import (
	"strconv"
	"strings"
)

// DuplicateGroup lists the columns that share one exact cell sequence
type DuplicateGroup struct {
	Values  []string `json:"values"`
	Columns []string `json:"columns"`
}

// DetectDuplicates groups columns whose cell sequences are element-wise equal.
// Only groups with two or more members are returned, ordered by the first column
// of each group from left to right. Members keep column order.
func DetectDuplicates(t *Table) []DuplicateGroup {
	index := make(map[string]int, len(t.Columns))
	var groups []DuplicateGroup

	for _, col := range t.Columns {
		key := sequenceKey(col.Values)
		if i, ok := index[key]; ok {
			groups[i].Columns = append(groups[i].Columns, col.Name)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, DuplicateGroup{
			Values:  col.Values,
			Columns: []string{col.Name},
		})
	}

	out := make([]DuplicateGroup, 0)
	for _, g := range groups {
		if len(g.Columns) < 2 {
			continue
		}
		out = append(out, DuplicateGroup{
			Values:  append([]string(nil), g.Values...),
			Columns: g.Columns,
		})
	}
	return out
}

// DuplicateColumns returns every column that is not the first of its group,
// which is the set a "keep first" resolution would remove.
func DuplicateColumns(groups []DuplicateGroup) []string {
	var names []string
	for _, g := range groups {
		if len(g.Columns) > 1 {
			names = append(names, g.Columns[1:]...)
		}
	}
	return names
}

// sequenceKey encodes a cell sequence with length prefixes so that distinct
// sequences never share a key.
func sequenceKey(values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}
