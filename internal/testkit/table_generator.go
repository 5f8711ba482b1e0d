package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"

	"tidytab/domain/table"
)

// TableGeneratorConfig configures the synthetic table generator
type TableGeneratorConfig struct {
	Rows            int     `json:"rows"`
	Columns         int     `json:"columns"`          // distinct base columns
	DuplicateGroups int     `json:"duplicate_groups"` // base columns that get copies
	CopiesPerGroup  int     `json:"copies_per_group"`
	MissingRate     float64 `json:"missing_rate"` // share of blank cells after the first row
	MessyHeaders    bool    `json:"messy_headers"`
	Seed            int64   `json:"seed"`
}

// DefaultTableConfig returns a small table with two planted duplicate groups
func DefaultTableConfig() TableGeneratorConfig {
	return TableGeneratorConfig{
		Rows:            50,
		Columns:         6,
		DuplicateGroups: 2,
		CopiesPerGroup:  1,
		MissingRate:     0.05,
		MessyHeaders:    true,
		Seed:            42,
	}
}

// PlantedGroup is a duplicate group the generator put into the table, using
// the column names Normalize will produce.
type PlantedGroup struct {
	Columns []string
}

// TableGenerator builds raw tables with known duplicate columns
type TableGenerator struct {
	config TableGeneratorConfig
	rng    *rand.Rand
}

// NewTableGenerator creates a new generator
func NewTableGenerator(config TableGeneratorConfig) *TableGenerator {
	if config.DuplicateGroups > config.Columns {
		config.DuplicateGroups = config.Columns
	}
	return &TableGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the raw table and the groups planted in it. Base columns
// alternate between numeric and text; copies are appended after all base
// columns in group order.
func (g *TableGenerator) Generate() (*table.Raw, []PlantedGroup) {
	cfg := g.config
	headers := make([]string, 0, cfg.Columns+cfg.DuplicateGroups*cfg.CopiesPerGroup)
	columns := make([][]string, 0, cap(headers))

	for j := 0; j < cfg.Columns; j++ {
		headers = append(headers, g.header(fmt.Sprintf("Field %d", j)))
		columns = append(columns, g.column(j))
	}

	planted := make([]PlantedGroup, 0, cfg.DuplicateGroups)
	for j := 0; j < cfg.DuplicateGroups; j++ {
		group := PlantedGroup{Columns: []string{fmt.Sprintf("field_%d", j)}}
		for k := 1; k <= cfg.CopiesPerGroup; k++ {
			headers = append(headers, g.header(fmt.Sprintf("Field %d Copy %d", j, k)))
			columns = append(columns, append([]string(nil), columns[j]...))
			group.Columns = append(group.Columns, fmt.Sprintf("field_%d_copy_%d", j, k))
		}
		if cfg.CopiesPerGroup > 0 {
			planted = append(planted, group)
		}
	}

	raw := &table.Raw{Headers: headers, Rows: make([][]string, cfg.Rows)}
	for r := 0; r < cfg.Rows; r++ {
		row := make([]string, len(columns))
		for c := range columns {
			row[c] = columns[c][r]
		}
		raw.Rows[r] = row
	}
	return raw, planted
}

// CSV renders a raw table as CSV bytes
func CSV(raw *table.Raw) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(raw.Headers)
	_ = w.WriteAll(raw.Rows)
	return buf.Bytes()
}

// column fills base column j. The first row carries j so that no two base
// columns can normalize to the same sequence.
func (g *TableGenerator) column(j int) []string {
	values := make([]string, g.config.Rows)
	for r := range values {
		if r > 0 && g.rng.Float64() < g.config.MissingRate {
			continue
		}
		n := g.rng.Intn(1000)
		if r == 0 {
			n = j
		}
		if j%2 == 0 {
			values[r] = strconv.Itoa(n)
		} else {
			values[r] = fmt.Sprintf("item #%d", n)
		}
	}
	return values
}

func (g *TableGenerator) header(name string) string {
	if !g.config.MessyHeaders {
		return name
	}
	switch g.rng.Intn(3) {
	case 0:
		return "  " + name + "  "
	case 1:
		return name + "!"
	default:
		return name
	}
}
