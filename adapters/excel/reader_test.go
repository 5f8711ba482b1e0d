package excel

import (
	"bytes"
	"testing"

	"tidytab/domain/table"
	"tidytab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDataReader_Supports(t *testing.T) {
	r := NewDataReader()

	assert.True(t, r.Supports("data.csv"))
	assert.True(t, r.Supports("Report.XLSX"))
	assert.True(t, r.Supports("macros.xlsm"))
	assert.False(t, r.Supports("legacy.xls"))
	assert.False(t, r.Supports("notes.txt"))
	assert.False(t, r.Supports("csv"))
}

func TestDataReader_ParseCSV(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("A,B,C\n1,x,1\n2,NA,2\n3,z\n")...)

	raw, err := NewDataReader().Parse("abc.csv", content)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, raw.Headers)
	assert.Equal(t, [][]string{{"1", "x", "1"}, {"2", "", "2"}, {"3", "z"}}, raw.Rows)
}

func TestDataReader_MissingTokensOnlyInData(t *testing.T) {
	raw, err := NewDataReader().Parse("t.csv", []byte("NA,null\n n/a ,ok\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"NA", "null"}, raw.Headers)
	assert.Equal(t, [][]string{{"", "ok"}}, raw.Rows)
}

func TestDataReader_Errors(t *testing.T) {
	r := NewDataReader()

	_, err := r.Parse("notes.txt", []byte("a,b\n"))
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))

	_, err = r.Parse("empty.csv", nil)
	assert.True(t, errors.HasCode(err, errors.CodeParseError))

	_, err = r.Parse("bad.csv", []byte{'a', ',', 0xff, '\n'})
	assert.True(t, errors.HasCode(err, errors.CodeParseError))

	_, err = r.Parse("bad.csv", []byte("a,\"b\n1,2\n"))
	assert.True(t, errors.HasCode(err, errors.CodeParseError))

	_, err = r.Parse("broken.xlsx", []byte("not a zip"))
	assert.True(t, errors.HasCode(err, errors.CodeParseError))
}

func TestDataReader_ParseWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Score"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"ann", 3}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"#N/A", 4.5}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	raw, err := NewDataReader().Parse("scores.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Score"}, raw.Headers)
	assert.Equal(t, [][]string{{"ann", "3"}, {"", "4.5"}}, raw.Rows)
}

func TestEncodeWorkbook_RoundTrip(t *testing.T) {
	cleaned := table.Normalize(&table.Raw{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"1", ""}, {"", "y"}},
	})

	data, err := EncodeWorkbook(cleaned)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{CleanedSheet}, f.GetSheetList())

	raw, err := NewDataReader().Parse("cleaned.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, cleaned, table.Normalize(raw))
}

func TestEncodeCSV_ReadsBackAsSameTable(t *testing.T) {
	cleaned := table.Normalize(&table.Raw{
		Headers: []string{"First Name", "Total $", "Code"},
		Rows:    [][]string{{" ann ", "1.5", "A,B"}, {"bob", "", "\"q\""}},
	})

	var buf bytes.Buffer
	require.NoError(t, table.EncodeCSV(&buf, cleaned))

	raw, err := NewDataReader().Parse("cleaned.csv", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cleaned, table.Normalize(raw))
}

func TestEncodeCSV_CleanedMissingLookalikesSurviveReadBack(t *testing.T) {
	cleaned := table.Normalize(&table.Raw{
		Headers: []string{"name", "id"},
		Rows:    [][]string{{"N.A.", "1"}, {"None.", "2"}, {"Bob", "3"}, {"", "4"}},
	})
	name, _ := cleaned.Column("name")
	require.Equal(t, []string{"NA", "None", "Bob", ""}, name.Values)

	var buf bytes.Buffer
	require.NoError(t, table.EncodeCSV(&buf, cleaned))

	raw, err := NewDataReaderWithConfig(ExportedTableConfig()).Parse("cleaned.csv", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cleaned, table.Normalize(raw))
}

func TestChartWorkbookExporter(t *testing.T) {
	_, err := NewChartWorkbookExporter().Export(nil)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestDataReader_LegacyWorkbookIsUnsupported(t *testing.T) {
	// BIFF8 compound document signature
	content := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	_, err := NewDataReader().Parse("legacy.xls", content)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))
}
