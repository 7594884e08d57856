package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapilot/adapters/charts"
	"datapilot/adapters/tabular"
	"datapilot/domain/report"
	"datapilot/internal"
	"datapilot/internal/clean"
	"datapilot/internal/config"
	"datapilot/internal/profile"
	"datapilot/internal/reportgen"
	"datapilot/internal/session"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0"},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			PreviewRows:   10,
			InferenceRows: 200,
		},
		Session: config.SessionConfig{
			TTL:        time.Hour,
			CookieName: "datapilot_session",
		},
		Chart: config.ChartConfig{
			Width:         320,
			Height:        200,
			HistogramBins: 20,
			BarTopN:       8,
			PieTopN:       5,
			MaxPerSession: 3,
		},
	}

	store := session.NewStore(cfg.Session.TTL, 0)
	t.Cleanup(store.Close)

	profiler := profile.NewProfiler()
	app, err := NewApp(Deps{
		Config: cfg,
		Store:  store.Adapter(),
		Reader: tabular.NewReader(cfg.Upload.InferenceRows),
		Renderer: charts.NewRenderer(charts.Options{
			Width:         cfg.Chart.Width,
			Height:        cfg.Chart.Height,
			HistogramBins: cfg.Chart.HistogramBins,
			BarTopN:       cfg.Chart.BarTopN,
			PieTopN:       cfg.Chart.PieTopN,
		}),
		Cleaner:  clean.NewEngine(),
		Profiler: profiler,
		Builder:  reportgen.NewBuilder(profiler),
		Logger:   internal.NewLogger(internal.LogLevelError),
	})
	require.NoError(t, err)
	return app
}

// client carries the session cookie across requests like a browser would
type client struct {
	app     *App
	cookies []*http.Cookie
}

func (c *client) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.app.Handler().ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	return w
}

func (c *client) postJSON(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return c.do(t, req)
}

func (c *client) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("dataset", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(t, req)
}

const ordersCSV = "region,amount\neast,10\nwest,20\neast,10\nsouth,\n"

func TestUploadAndDatasetInfo(t *testing.T) {
	c := &client{app: newTestApp(t)}

	w := c.upload(t, "orders.csv", ordersCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var up uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	assert.Equal(t, "orders.csv", up.Filename)
	assert.Equal(t, 4, up.Rows)
	assert.Len(t, up.Columns, 2)

	w = c.do(t, httptest.NewRequest(http.MethodGet, "/api/dataset/info", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info datasetInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 4, info.KPIs.TotalRows)
	assert.Equal(t, 1, info.KPIs.DuplicateRows)
	assert.Equal(t, 1, info.KPIs.MissingCells)
	assert.Len(t, info.Preview, 4)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	c := &client{app: newTestApp(t)}

	w := c.upload(t, "notes.txt", "hello")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_UNSUPPORTED")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	c := &client{app: newTestApp(t)}

	big := "a,b\n" + strings.Repeat("1,2\n", 300_000)
	w := c.upload(t, "big.csv", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleaningFlow(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	w := c.postJSON(t, "/api/clean/duplicates", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp cleanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Summary.RowsRemoved)
	assert.Equal(t, 3, resp.KPIs.TotalRows)
	assert.Equal(t, 0, resp.KPIs.DuplicateRows)

	w = c.postJSON(t, "/api/clean/impute", map[string]string{"strategy": "mean"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Summary.FilledTotal)
	assert.Equal(t, 0, resp.KPIs.MissingCells)

	w = c.postJSON(t, "/api/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.KPIs.TotalRows)
	assert.Equal(t, 1, resp.KPIs.MissingCells)
}

func TestImputeRejectsUnknownStrategy(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	w := c.postJSON(t, "/api/clean/impute", map[string]string{"strategy": "mode"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleaningWithoutDataset(t *testing.T) {
	c := &client{app: newTestApp(t)}

	w := c.postJSON(t, "/api/clean/duplicates", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "DATASET_EMPTY")
}

func TestDownloadReturnsCleanedCSV(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)
	c.postJSON(t, "/api/clean/duplicates", nil)

	w := c.do(t, httptest.NewRequest(http.MethodGet, "/api/download", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cleaned_orders.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 4) // header + 3 deduplicated rows
	assert.Equal(t, "region,amount", lines[0])
}

func TestChartLifecycle(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	w := c.postJSON(t, "/api/charts", map[string]string{"kind": "histogram", "column": "amount"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var entry chartEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, 0, entry.Index)
	assert.Equal(t, "histogram: amount", entry.Title)

	w = c.do(t, httptest.NewRequest(http.MethodGet, "/api/charts/0/render", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = c.do(t, httptest.NewRequest(http.MethodDelete, "/api/charts/0", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(t, httptest.NewRequest(http.MethodGet, "/api/charts/0/render", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddChartValidation(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	// histogram needs a numeric column
	w := c.postJSON(t, "/api/charts", map[string]string{"kind": "histogram", "column": "region"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = c.postJSON(t, "/api/charts", map[string]string{"kind": "bar", "column": "missing_col"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.postJSON(t, "/api/charts", map[string]string{"kind": "sunburst", "column": "amount"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChartLimitPerSession(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	for i := 0; i < 3; i++ {
		w := c.postJSON(t, "/api/charts", map[string]string{"kind": "bar", "column": "region"})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := c.postJSON(t, "/api/charts", map[string]string{"kind": "bar", "column": "region"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "chart limit")
}

func TestChartPreview(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	w := c.do(t, httptest.NewRequest(http.MethodGet, "/api/charts/preview?kind=pie&column=region", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	// nothing stored
	w = c.do(t, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	assert.Equal(t, `{"charts":[]}`, strings.TrimSpace(w.Body.String()))
}

func TestReportReflectsCleaning(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)
	c.postJSON(t, "/api/clean/duplicates", nil)
	c.postJSON(t, "/api/clean/impute", map[string]string{"strategy": "mean"})

	w := c.do(t, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rep report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, 3, rep.KPIs.TotalRows)
	assert.Equal(t, 0, rep.KPIs.DuplicateRows)
	assert.Equal(t, 0, rep.KPIs.MissingCells)
	assert.Equal(t, "orders.csv", rep.Filename)
}

func TestReportExportIsWorkbook(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	w := c.do(t, httptest.NewRequest(http.MethodGet, "/api/report/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders_report.xlsx")
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestSessionIsolation(t *testing.T) {
	app := newTestApp(t)
	alice := &client{app: app}
	bob := &client{app: app}

	alice.upload(t, "orders.csv", ordersCSV)

	w := bob.do(t, httptest.NewRequest(http.MethodGet, "/api/dataset/info", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "DATASET_EMPTY")
}

func TestSessionCookieIssuedOnce(t *testing.T) {
	c := &client{app: newTestApp(t)}

	w := c.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, w.Result().Cookies(), 1)
	first := w.Result().Cookies()[0]
	assert.Equal(t, "datapilot_session", first.Name)

	w = c.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Result().Cookies())
}

func TestPagesRenderWithoutDataset(t *testing.T) {
	c := &client{app: newTestApp(t)}

	for _, path := range []string{"/", "/visualize", "/report"} {
		w := c.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, fmt.Sprintf("page %s", path))
		assert.Contains(t, w.Body.String(), "No dataset loaded")
	}
}

func TestPagesRenderWithDataset(t *testing.T) {
	c := &client{app: newTestApp(t)}
	c.upload(t, "orders.csv", ordersCSV)

	w := c.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "orders.csv")
	assert.Contains(t, w.Body.String(), "region")

	w = c.do(t, httptest.NewRequest(http.MethodGet, "/report", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Summary report")
}
