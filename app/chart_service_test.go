package app

import (
	"context"
	"testing"

	"tidytab/adapters/excel"
	"tidytab/domain/chart"
	"tidytab/domain/table"
	"tidytab/internal/errors"
	"tidytab/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChartRenderer struct {
	mock.Mock
}

func (m *MockChartRenderer) Render(spec chart.Spec, t *table.Table) ([]byte, error) {
	args := m.Called(spec, t)
	if img := args.Get(0); img != nil {
		return img.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockChartExporter struct {
	mock.Mock
}

func (m *MockChartExporter) Export(images [][]byte) ([]byte, error) {
	args := m.Called(images)
	return args.Get(0).([]byte), args.Error(1)
}

const salesCSV = "region,amount\nwest,10\neast,4\nwest,20\n"

func newChartService(renderer *MockChartRenderer, workbook, document *MockChartExporter) *ChartService {
	return NewChartService(excel.NewDataReader(), renderer, workbook, document, session.NewMemoryStore(), 1<<20)
}

func TestChartService_GenerateAndExport(t *testing.T) {
	ctx := context.Background()
	renderer, workbook, document := new(MockChartRenderer), new(MockChartExporter), new(MockChartExporter)
	svc := newChartService(renderer, workbook, document)

	up, err := svc.UploadVisualization(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, up.RowCount)
	require.Len(t, up.Columns, 2)
	assert.Equal(t, "region", up.Columns[0].Name)
	assert.True(t, up.Columns[1].Numeric)

	barSpec := chart.Spec{Kind: chart.KindBar, X: "region", Y: "amount"}
	pieSpec := chart.Spec{Kind: chart.KindPie, X: "region", Y: "amount"}
	renderer.On("Render", barSpec, mock.Anything).Return([]byte("bar"), nil)
	renderer.On("Render", pieSpec, mock.Anything).Return([]byte("pie"), nil)

	res, err := svc.GenerateChart(ctx, "s1", "bar", "region", "amount")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Index)
	res, err = svc.GenerateChart(ctx, "s1", "Pie", "region", "amount")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	workbook.On("Export", [][]byte{[]byte("bar"), []byte("pie")}).Return([]byte("xlsx"), nil)
	document.On("Export", [][]byte{[]byte("bar"), []byte("pie")}).Return([]byte("pdf"), nil)

	file, err := svc.ExportExcel(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "visualizations.xlsx", file.Filename)
	assert.Equal(t, []byte("xlsx"), file.Data)

	file, err = svc.ExportPDF(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "visualizations.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)

	renderer.AssertExpectations(t)
	workbook.AssertExpectations(t)
	document.AssertExpectations(t)
}

func TestChartService_UploadResetsCharts(t *testing.T) {
	ctx := context.Background()
	renderer := new(MockChartRenderer)
	svc := newChartService(renderer, new(MockChartExporter), new(MockChartExporter))
	renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("img"), nil)

	_, err := svc.UploadVisualization(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)
	_, err = svc.GenerateChart(ctx, "s1", "bar", "region", "amount")
	require.NoError(t, err)

	_, err = svc.UploadVisualization(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	_, err = svc.ExportPDF(ctx, "s1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	assert.Contains(t, err.Error(), "No charts to export")
}

func TestChartService_Errors(t *testing.T) {
	ctx := context.Background()
	renderer := new(MockChartRenderer)
	svc := newChartService(renderer, new(MockChartExporter), new(MockChartExporter))

	_, err := svc.UploadVisualization(ctx, "s1", "sales.xlsx", []byte(salesCSV))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.GenerateChart(ctx, "s1", "bar", "region", "amount")
	assert.True(t, errors.HasCode(err, errors.CodeNoActiveSession))

	_, err = svc.ExportExcel(ctx, "s1")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.UploadVisualization(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	_, err = svc.GenerateChart(ctx, "s1", "radar", "region", "amount")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	renderer.On("Render", mock.Anything, mock.Anything).Return(nil, chart.ErrNotNumeric)
	_, err = svc.GenerateChart(ctx, "s1", "bar", "amount", "region")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
