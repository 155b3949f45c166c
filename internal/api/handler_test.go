package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statgrid/internal"
	"statgrid/internal/config"
)

const teamCSV = "Team,Points,Fouls\nRed,10,3\nRed,12,4\nRed,11,2\nBlue,20,5\nBlue,22,7\nBlue,21,6\n"

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", MaxUploadMB: 1},
		Analysis: config.AnalysisConfig{NumericThreshold: 0.5, KDEPoints: 50},
		Input:    config.InputConfig{SheetName: "Sheet1"},
	}
}

func newTestEngine(t *testing.T, reg prometheus.Registerer) (*gin.Engine, *Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := NewMetrics(reg)
	return NewHandler(testConfig(), internal.NewLogger(internal.LogLevelError), m).Engine(), m
}

func do(e http.Handler, method, target, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	decode(t, w, &body)
	return body.Error.Code
}

func TestAnalyzeCSV(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, m := newTestEngine(t, reg)

	w := do(e, http.MethodPost, "/api/analyze", "text/csv", []byte(teamCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RunIDKey))

	var resp AnalyzeResponse
	decode(t, w, &resp)
	assert.Equal(t, w.Header().Get(RunIDKey), resp.RunID.String())
	assert.Equal(t, 6, resp.Table.Rows)
	assert.Equal(t, 3, resp.Table.Columns)
	assert.Equal(t, []string{"Points", "Fouls"}, resp.Report.NumericColumns)
	assert.Equal(t, "Team", resp.Report.GroupBy)
	assert.Equal(t, 16.0, resp.Report.Stats["Points"].Mean)
	assert.NotEmpty(t, resp.Report.Hypotheses)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("ok")))
}

func TestAnalyzeJSONBody(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	body := `{"data":{"rows":[{"g":"a","v":1},{"g":"a","v":2},{"g":"b","v":5},{"g":"b","v":7}]}}`

	w := do(e, http.MethodPost, "/api/analyze?data_path=data.rows&correlation=false", "application/json", []byte(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalyzeResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"g", "v"}, resp.Report.Columns)
	assert.Equal(t, []string{"a", "b"}, resp.Report.GroupLabels)
	assert.Nil(t, resp.Report.Correlation)
}

func TestAnalyzeMultipartUpload(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "season.tsv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(strings.ReplaceAll(teamCSV, ",", "\t")))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := do(e, http.MethodPost, "/api/analyze", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalyzeResponse
	decode(t, w, &resp)
	assert.Equal(t, "season.tsv", resp.Table.Name)
	assert.Equal(t, 3, resp.Table.Columns)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        []byte
		status      int
		code        string
	}{
		{"unknown group column", "/api/analyze?group_by=Nope", "text/csv", []byte(teamCSV), http.StatusBadRequest, "INVALID_INPUT"},
		{"numeric group column", "/api/analyze?group_by=Points", "text/csv", []byte(teamCSV), http.StatusBadRequest, "INVALID_INPUT"},
		{"bad mu0", "/api/analyze?mu0=abc", "text/csv", []byte(teamCSV), http.StatusBadRequest, "INVALID_INPUT"},
		{"bad threshold", "/api/analyze?threshold=2", "text/csv", []byte(teamCSV), http.StatusBadRequest, "INVALID_INPUT"},
		{"empty body", "/api/analyze", "text/csv", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", "/api/analyze", "application/json", []byte("{"), http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown format", "/api/analyze?format=parquet", "", []byte(teamCSV), http.StatusBadRequest, "INVALID_INPUT"},
		{"too large", "/api/analyze", "text/csv", bytes.Repeat([]byte("1\n"), 1<<20), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			w := do(e, http.MethodPost, tt.target, tt.contentType, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestAnalyzeRejectedIsCounted(t *testing.T) {
	e, m := newTestEngine(t, prometheus.NewRegistry())
	do(e, http.MethodPost, "/api/analyze", "application/json", []byte("{"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("rejected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Analyses.WithLabelValues("ok")))
}

func TestReport(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	w := do(e, http.MethodPost, "/api/report?title=Season", "text/csv", []byte(teamCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<title>Season</title>")

	w = do(e, http.MethodPost, "/api/report?output=markdown", "text/csv", []byte(teamCSV))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.True(t, strings.HasPrefix(w.Body.String(), "# Analysis report"), w.Body.String())
}

func TestValueOperations(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	w := do(e, http.MethodPost, "/api/kde", "application/json", []byte(`{"values":[1,2,3,4,5],"points":20}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var kde struct {
		Points []float64 `json:"points"`
	}
	decode(t, w, &kde)
	assert.Len(t, kde.Points, 20)

	w = do(e, http.MethodPost, "/api/histogram", "application/json", []byte(`{"values":[1,2,2,3,3,3,4,4,5],"overlay":true}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var hist HistogramResponse
	decode(t, w, &hist)
	assert.NotEmpty(t, hist.Counts)
	assert.Len(t, hist.Overlay, len(hist.Counts))

	w = do(e, http.MethodPost, "/api/smooth", "application/json", []byte(`{"values":[1,2,3,4,5,6],"window":3}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sm SmoothResponse
	decode(t, w, &sm)
	assert.Equal(t, 3, sm.Window)
	assert.Len(t, sm.Values, 6)
}

func TestValueOperationLimits(t *testing.T) {
	big := append([]byte(`{"values":[1`), bytes.Repeat([]byte(",1"), 1<<20)...)
	big = append(big, []byte("]}")...)

	tests := []struct {
		name   string
		target string
		body   []byte
		status int
		code   string
	}{
		{"smooth body too large", "/api/smooth", big, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"kde body too large", "/api/kde", big, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"regress body too large", "/api/regress", big, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"kde grid too large", "/api/kde", []byte(`{"values":[1,2,3],"points":3000000}`), http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			w := do(e, http.MethodPost, tt.target, "application/json", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestColumnKDEPointsClamped(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	w := do(e, http.MethodPost, "/api/columns/Points/kde?points=50000", "text/csv", []byte(teamCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var kde struct {
		Points []float64 `json:"points"`
	}
	decode(t, w, &kde)
	assert.Len(t, kde.Points, maxKDEPoints)
}

func TestRegress(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		code     string
		equation string
	}{
		{"line", `{"x":[1,2,3,4],"y":[3,5,7,9]}`, http.StatusOK, "", "2x + 1"},
		{"quadratic", `{"x":[-1,0,1,2],"y":[3,1,3,9],"degree":2}`, http.StatusOK, "", "2x² "},
		{"constant x", `{"x":[1,1,1],"y":[1,2,3]}`, http.StatusUnprocessableEntity, "NOT_COMPUTABLE", ""},
		{"singular system", `{"x":[1,1,1,1],"y":[1,2,3,4],"degree":2}`, http.StatusUnprocessableEntity, "NOT_COMPUTABLE", ""},
		{"degree too high", `{"x":[1,2],"y":[1,2],"degree":11}`, http.StatusBadRequest, "INVALID_INPUT", ""},
		{"missing y", `{"x":[1,2]}`, http.StatusBadRequest, "INVALID_INPUT", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			w := do(e, http.MethodPost, "/api/regress", "application/json", []byte(tt.body))
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
				return
			}
			var resp RegressResponse
			decode(t, w, &resp)
			assert.True(t, strings.HasPrefix(resp.Equation, tt.equation), resp.Equation)
		})
	}
}

func TestColumnOperations(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	w := do(e, http.MethodPost, "/api/columns/Points/regress?x=Fouls", "text/csv", []byte(teamCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reg RegressResponse
	decode(t, w, &reg)
	require.NotNil(t, reg.Linear)
	assert.Equal(t, 6, reg.Linear.N)

	w = do(e, http.MethodPost, "/api/columns/Points/smooth", "text/csv", []byte(teamCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown column", "/api/columns/Nope/kde", http.StatusBadRequest},
		{"categorical column", "/api/columns/Team/histogram", http.StatusBadRequest},
		{"regress without x", "/api/columns/Points/regress", http.StatusBadRequest},
		{"bad window", "/api/columns/Points/smooth?window=-1", http.StatusBadRequest},
		{"unknown operation", "/api/columns/Points/median", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(e, http.MethodPost, tt.target, "text/csv", []byte(teamCSV))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
