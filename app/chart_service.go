package app

import (
	"context"
	stderrors "errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"tidytab/domain/chart"
	"tidytab/domain/table"
	"tidytab/internal/errors"
	"tidytab/ports"
)

// VizKey is the store key of a caller's visualization session
func VizKey(sessionID string) string {
	return sessionID + "/viz"
}

const (
	msgUploadCSV = "Please upload a cleaned CSV file"
	msgNoCharts  = "No charts to export"
)

// ChartService builds charts from an uploaded table and exports them
type ChartService struct {
	parser    ports.TableParser
	renderer  ports.ChartRenderer
	workbook  ports.ChartExporter
	document  ports.ChartExporter
	store     ports.SessionStore
	maxUpload int64
	now       func() time.Time
}

// VizUploadResult lists the columns available for charting
type VizUploadResult struct {
	Filename string                `json:"filename"`
	RowCount int                   `json:"row_count"`
	Columns  []chart.ColumnSummary `json:"columns"`
	Kinds    []chart.Kind          `json:"chart_types"`
}

// ChartResult is a freshly generated chart
type ChartResult struct {
	Spec  chart.Spec `json:"spec"`
	Index int        `json:"index"`
	Count int        `json:"count"`
	PNG   []byte     `json:"png"`
}

// NewChartService creates a visualization service
func NewChartService(
	parser ports.TableParser,
	renderer ports.ChartRenderer,
	workbook ports.ChartExporter,
	document ports.ChartExporter,
	store ports.SessionStore,
	maxUpload int64,
) *ChartService {
	return &ChartService{
		parser:    parser,
		renderer:  renderer,
		workbook:  workbook,
		document:  document,
		store:     store,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}

// UploadVisualization replaces the caller's visualization table and clears their charts
func (s *ChartService) UploadVisualization(ctx context.Context, sessionID, filename string, content []byte) (*VizUploadResult, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".csv" {
		return nil, errors.InvalidInput(msgUploadCSV)
	}
	if s.maxUpload > 0 && int64(len(content)) > s.maxUpload {
		return nil, errors.PayloadTooLarge("upload", int64(len(content)), s.maxUpload)
	}

	raw, err := s.parser.Parse(filename, content)
	if err != nil {
		return nil, err
	}
	t := table.FromRaw(raw)
	if len(t.Columns) == 0 {
		return nil, errors.InvalidInput(msgUploadCSV)
	}

	viz := chart.NewVizSession(filename, t, s.now())
	payload, err := viz.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode visualization session")
	}
	if _, err := s.store.Put(ctx, VizKey(sessionID), payload); err != nil {
		return nil, err
	}

	log.Printf("[ChartService] Session %s uploaded %s for charting (%d columns, %d rows)",
		sessionID, filename, len(t.Columns), t.RowCount())

	return &VizUploadResult{
		Filename: filename,
		RowCount: t.RowCount(),
		Columns:  chart.Summarize(t),
		Kinds:    chart.Kinds,
	}, nil
}

// GenerateChart renders a chart and appends it to the caller's charts
func (s *ChartService) GenerateChart(ctx context.Context, sessionID, kind, x, y string) (*ChartResult, error) {
	k, err := chart.ParseKind(kind)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	spec := chart.Spec{Kind: k, X: x, Y: y}

	key := VizKey(sessionID)
	viz, version, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(spec, viz.Table)
	if err != nil {
		if isChartInputError(err) {
			return nil, errors.InvalidInput(err.Error())
		}
		return nil, errors.Wrap(err, "failed to render chart")
	}

	next := viz.WithChart(chart.Chart{Spec: spec, PNG: img}, s.now())
	payload, err := next.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode visualization session")
	}
	if _, err := s.store.CompareAndSwap(ctx, key, payload, version); err != nil {
		return nil, err
	}

	log.Printf("[ChartService] Session %s generated %s chart %s/%s (%d total)",
		sessionID, k, x, y, len(next.Charts))

	return &ChartResult{
		Spec:  spec,
		Index: len(next.Charts) - 1,
		Count: len(next.Charts),
		PNG:   img,
	}, nil
}

// ExportExcel returns every chart placed down one workbook sheet
func (s *ChartService) ExportExcel(ctx context.Context, sessionID string) (*FileResult, error) {
	return s.export(ctx, sessionID, s.workbook, "visualizations.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// ExportPDF returns every chart laid out on A4 pages
func (s *ChartService) ExportPDF(ctx context.Context, sessionID string) (*FileResult, error) {
	return s.export(ctx, sessionID, s.document, "visualizations.pdf", "application/pdf")
}

func (s *ChartService) export(ctx context.Context, sessionID string, exporter ports.ChartExporter, filename, contentType string) (*FileResult, error) {
	viz, _, err := s.load(ctx, VizKey(sessionID))
	if err != nil {
		if errors.HasCode(err, errors.CodeNoActiveSession) {
			return nil, errors.InvalidInput(msgNoCharts)
		}
		return nil, err
	}
	if len(viz.Charts) == 0 {
		return nil, errors.InvalidInput(msgNoCharts)
	}

	data, err := exporter.Export(viz.Images())
	if err != nil {
		return nil, errors.Wrap(err, "failed to export charts")
	}
	return &FileResult{Filename: filename, ContentType: contentType, Data: data}, nil
}

func (s *ChartService) load(ctx context.Context, key string) (*chart.VizSession, int64, error) {
	rec, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return nil, 0, errors.NoActiveSession()
	}
	viz, err := chart.UnmarshalViz(rec.Payload)
	if err != nil {
		return nil, 0, errors.WithCode(errors.CodeInternalError, err)
	}
	return viz, rec.Version, nil
}

func isChartInputError(err error) bool {
	for _, target := range []error{
		chart.ErrUnknownKind, chart.ErrUnknownColumn, chart.ErrNotNumeric,
		chart.ErrNoData, chart.ErrNegativeSlice,
	} {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}
