package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tidytab/adapters/convert"
	"tidytab/adapters/excel"
	"tidytab/adapters/pdf"
	"tidytab/adapters/render"
	"tidytab/app"
	"tidytab/internal/config"
	"tidytab/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	store := session.NewLimitedStore(session.NewMemoryStore(), cfg.Limits.MaxSessionBytes)
	reader := excel.NewDataReader()
	opts := app.CleaningOptions{
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		PreviewRows:    cfg.Limits.PreviewRows,
		PreviewColumns: cfg.Limits.PreviewColumns,
	}

	srv, err := NewServer(cfg, Services{
		Cleaning: app.NewCleaningService(reader, store, excel.Encoders(), opts),
		Charts: app.NewChartService(excel.NewDataReaderWithConfig(excel.ExportedTableConfig()), render.NewPlotRenderer(), excel.NewChartWorkbookExporter(),
			pdf.NewChartDocumentExporter(), store, cfg.Limits.MaxUploadBytes),
		Convert: app.NewConvertService(convert.NewDocumentConverter(), cfg.Convert.MaxConcurrent, cfg.Limits.MaxUploadBytes),
	})
	require.NoError(t, err)
	return srv
}

// client replays the session cookie the server hands out
type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.srv.Handler().ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "tidytab_session" {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) upload(path, filename, content string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCleaningFlow(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	w := c.upload("/upload", "abc.csv", "A,B,C\n1,x,1\n2,y,2\n3,z,3\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, c.cookie)
	body := decode(t, w)
	assert.Equal(t, []interface{}{"a", "b", "c"}, body["columns"])
	dups := body["duplicates"].([]interface{})
	require.Len(t, dups, 1)
	assert.Equal(t, []interface{}{"a", "c"}, dups[0].(map[string]interface{})["columns"])

	w = c.postForm("/remove-duplicates", url.Values{"remove_columns": {"a"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []interface{}{"b", "c"}, decode(t, w)["columns"])

	w = c.get("/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="cleaned_data.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "b,c\nx,1\ny,2\nz,3\n", w.Body.String())

	w = c.get("/download?format=xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="cleaned_data.xlsx"`, w.Header().Get("Content-Disposition"))

	req := httptest.NewRequest(http.MethodDelete, "/session", nil)
	assert.Equal(t, http.StatusNoContent, c.do(req).Code)
	assert.Equal(t, http.StatusConflict, c.get("/download").Code)
}

func TestRemoveDuplicates_JSONDecision(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	require.Equal(t, http.StatusOK, c.upload("/", "abc.csv", "A,B,C\n1,x,1\n2,y,2\n").Code)

	req := httptest.NewRequest(http.MethodPost, "/remove-duplicates", strings.NewReader(`{"ignore":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := c.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"a", "b", "c"}, decode(t, w)["columns"])
}

func TestNoActiveSession(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	req := httptest.NewRequest(http.MethodPost, "/remove-duplicates", strings.NewReader("ignore_duplicates=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := c.do(req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = c.postForm("/remove-duplicates", url.Values{"ignore_duplicates": {"1"}})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "NO_ACTIVE_SESSION", body["code"])
	assert.Equal(t, "/", body["redirect"])
}

func TestUploadErrors(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	w := c.upload("/upload", "notes.txt", "hello")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "UNSUPPORTED_FORMAT", decode(t, w)["code"])

	w = c.upload("/upload", "bad.xlsx", "not a workbook")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = c.postForm("/upload", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file selected", decode(t, w)["error"])
}

func TestVisualizationFlow(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	w := c.get("/visualization/download-excel")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No charts to export", decode(t, w)["error"])

	w = c.upload("/upload_visualization", "sales.xlsx", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please upload a cleaned CSV file", decode(t, w)["error"])

	w = c.upload("/upload_visualization", "sales.csv", "region,amount\nwest,10\neast,4\nwest,20\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.postForm("/generate_chart", url.Values{"x_column": {"region"}, "y_column": {"amount"}, "chart_type": {"bar"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.True(t, strings.HasPrefix(body["image"].(string), "data:image/png;base64,"))

	w = c.postForm("/generate_chart", url.Values{"x_column": {"region"}, "y_column": {"nope"}, "chart_type": {"bar"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.get("/download/pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = c.get("/visualization/download-excel")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="visualizations.xlsx"`, w.Header().Get("Content-Disposition"))
}

func TestConverterRejectsWrongExtension(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	w := c.upload("/convert/docx-to-pdf", "report.txt", "hello")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid DOCX file", decode(t, w)["error"])

	w = c.upload("/convert/pdf-to-docx", "scan.pdf", "not really a pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid PDF file", decode(t, w)["error"])
}

func TestPagesAndSitemap(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	w := c.get("/about")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>About</title>")
	assert.Contains(t, w.Body.String(), "<h1")

	assert.Equal(t, http.StatusOK, c.get("/convert").Code)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)

	w = c.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, w.Code)
	for _, loc := range []string{"http://localhost:8080/", "http://localhost:8080/about", "http://localhost:8080/contact"} {
		assert.Contains(t, w.Body.String(), "<loc>"+loc+"</loc>")
	}
	assert.Equal(t, 5, strings.Count(w.Body.String(), "<changefreq>monthly</changefreq>"))
	assert.Equal(t, 5, strings.Count(w.Body.String(), "<priority>0.5</priority>"))
}

func TestUnknownPageIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/missing", nil)

	srv.handlePage("missing")(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "page not found", body["error"])
}

func TestGenerateChartRequiresFields(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	w := c.postForm("/generate_chart", url.Values{"x_column": {"region"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INVALID_INPUT", body["code"])
	assert.Equal(t, "x_column, y_column and chart_type are required", body["error"])
}
