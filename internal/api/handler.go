// Package api exposes the analysis engine as a JSON HTTP API built on gin.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"statgrid/domain/analysis"
	"statgrid/domain/core"
	"statgrid/internal"
	"statgrid/internal/analysis/engine"
	"statgrid/internal/config"
	"statgrid/internal/dataset"
	"statgrid/internal/errors"
	"statgrid/internal/report"
)

// Prefix is where the API routes live.
const Prefix = "/api"

// RunIDKey is the gin context key and response header carrying the run ID.
const RunIDKey = "X-Run-ID"

// Handler serves the analysis endpoints
type Handler struct {
	cfg     *config.Config
	logger  *internal.Logger
	metrics *Metrics
}

// NewHandler creates the API handler. A nil metrics disables instrumentation.
func NewHandler(cfg *config.Config, logger *internal.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{cfg: cfg, logger: logger, metrics: metrics}
}

// Engine builds the gin engine with every API route registered under Prefix.
func (h *Handler) Engine() *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), RunID())

	g := e.Group(Prefix)
	g.POST("/analyze", h.handleAnalyze)
	g.POST("/report", h.handleReport)
	g.POST("/kde", h.handleKDE)
	g.POST("/histogram", h.handleHistogram)
	g.POST("/regress", h.handleRegress)
	g.POST("/smooth", h.handleSmooth)
	g.POST("/columns/:name/:op", h.handleColumnOp)
	return e
}

// RunID stamps every request with a time-ordered run identifier.
func RunID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := core.NewID()
		c.Set(RunIDKey, id)
		c.Header(RunIDKey, id.String())
		c.Next()
	}
}

func runID(c *gin.Context) core.ID {
	if v, ok := c.Get(RunIDKey); ok {
		if id, ok := v.(core.ID); ok {
			return id
		}
	}
	return ""
}

// TableInfo identifies the analysed input.
type TableInfo struct {
	Name        string `json:"name,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
}

// AnalyzeResponse is the envelope of POST /api/analyze.
type AnalyzeResponse struct {
	RunID    core.ID          `json:"run_id"`
	Table    TableInfo        `json:"table"`
	Report   *analysis.Report `json:"report"`
	Insights []report.Insight `json:"insights"`
	Elapsed  string           `json:"elapsed"`
}

// errorBody is the JSON shape of every failure.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RunID core.ID `json:"run_id,omitempty"`
}

func (h *Handler) fail(c *gin.Context, err error) {
	err = errors.FromDomain(err)
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("[api] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		h.logger.Debug("[api] %s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	var body errorBody
	body.Error.Code = errors.GetCode(err)
	body.Error.Message = err.Error()
	body.RunID = runID(c)
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) inputOptions() InputOptions {
	return InputOptions{
		MaxBytes:  int64(h.cfg.Server.MaxUploadMB) << 20,
		SheetName: h.cfg.Input.SheetName,
	}
}

// analyzeOptions reads engine options from the query string on top of the
// configured defaults.
func (h *Handler) analyzeOptions(c *gin.Context) (engine.Options, error) {
	opts := engine.DefaultOptions()
	opts.Policy = h.cfg.Analysis.Policy()
	opts.Mu0 = h.cfg.Analysis.Mu0
	opts.Workers = h.cfg.Analysis.Workers
	opts.GroupBy = c.Query("group_by")

	if v := c.Query("mu0"); v != "" {
		mu0, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.InvalidInput("mu0 must be a number")
		}
		opts.Mu0 = mu0
	}
	if v := c.Query("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t >= 1 {
			return opts, errors.InvalidInput("threshold must be a number in [0, 1)")
		}
		opts.Policy.Threshold = t
	}
	if v := c.Query("lenient"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.InvalidInput("lenient must be a boolean")
		}
		opts.Policy.Lenient = b
	}
	if v := c.Query("correlation"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.InvalidInput("correlation must be a boolean")
		}
		opts.Correlation = b
	}
	return opts, nil
}

// analyze reads the table in the request and runs the engine over it.
func (h *Handler) analyze(c *gin.Context) (*dataset.Table, *analysis.Report, error) {
	opts, err := h.analyzeOptions(c)
	if err != nil {
		return nil, nil, err
	}
	t, err := ReadTable(c.Writer, c.Request, h.inputOptions())
	if err != nil {
		h.metrics.ObserveAnalysis("rejected", 0, 0)
		return nil, nil, err
	}
	r, err := engine.Analyze(c.Request.Context(), t, opts)
	if err != nil {
		h.metrics.ObserveAnalysis("failed", 0, 0)
		return nil, nil, err
	}
	h.metrics.ObserveAnalysis("ok", len(t.Columns), t.Rows())
	h.logger.With("run", runID(c).String()).Info("[api] analyzed %q (%d columns, %d rows, fingerprint %s)",
		t.Name, len(t.Columns), t.Rows(), t.Fingerprint().Short())
	return t, r, nil
}

func (h *Handler) handleAnalyze(c *gin.Context) {
	start := time.Now()
	t, r, err := h.analyze(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	insights := report.Insights(r)
	if c.Query("round") != "false" {
		r = roundReport(r)
	}
	c.JSON(http.StatusOK, AnalyzeResponse{
		RunID: runID(c),
		Table: TableInfo{
			Name:        t.Name,
			Fingerprint: t.Fingerprint().String(),
			Rows:        t.Rows(),
			Columns:     len(t.Columns),
		},
		Report:   r,
		Insights: insights,
		Elapsed:  time.Since(start).String(),
	})
}

func (h *Handler) handleReport(c *gin.Context) {
	t, r, err := h.analyze(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	title := c.Query("title")
	if title == "" {
		title = t.Name
	}
	if title == "" {
		title = "Analysis report"
	}
	md := report.Markdown(title, r)
	if c.Query("output") == "markdown" || c.GetHeader("Accept") == "text/markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(title, md))
}

// roundReport returns a copy whose descriptive statistics are rounded to
// four decimals for display.
func roundReport(r *analysis.Report) *analysis.Report {
	out := *r
	out.Stats = make(map[string]analysis.DescriptiveStats, len(r.Stats))
	for k, s := range r.Stats {
		out.Stats[k] = s.Rounded()
	}
	return &out
}
