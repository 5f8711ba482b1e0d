package testkit

import (
	"testing"

	"tidytab/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableGenerator_Deterministic(t *testing.T) {
	a, _ := NewTableGenerator(DefaultTableConfig()).Generate()
	b, _ := NewTableGenerator(DefaultTableConfig()).Generate()

	assert.Equal(t, a, b)
}

func TestTableGenerator_PlantedGroupsAreDetected(t *testing.T) {
	config := DefaultTableConfig()
	config.CopiesPerGroup = 2

	raw, planted := NewTableGenerator(config).Generate()
	require.Len(t, planted, 2)
	assert.Len(t, raw.Headers, config.Columns+4)

	groups := table.DetectDuplicates(table.Normalize(raw))
	require.Len(t, groups, len(planted))
	for i, g := range groups {
		assert.Equal(t, planted[i].Columns, g.Columns)
	}
}

func TestTableGenerator_NoCopies(t *testing.T) {
	config := DefaultTableConfig()
	config.CopiesPerGroup = 0

	raw, planted := NewTableGenerator(config).Generate()

	assert.Empty(t, planted)
	assert.Empty(t, table.DetectDuplicates(table.Normalize(raw)))
}

func TestCSV(t *testing.T) {
	raw := &table.Raw{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "x, y"}}}

	assert.Equal(t, "a,b\n1,\"x, y\"\n", string(CSV(raw)))
}
