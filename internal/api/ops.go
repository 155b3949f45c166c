package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"statgrid/domain/analysis"
	"statgrid/internal/analysis/bivariate"
	"statgrid/internal/analysis/density"
	"statgrid/internal/analysis/descriptive"
	"statgrid/internal/analysis/engine"
	"statgrid/internal/errors"
)

// ValuesRequest carries one sample for the on-demand operations.
type ValuesRequest struct {
	Values  []float64 `json:"values" binding:"required"`
	Points  int       `json:"points" binding:"gte=0,lte=10000"`
	Window  int       `json:"window" binding:"gte=0"`
	Overlay bool      `json:"overlay"`
}

// RegressRequest carries paired samples; degree 0 or 1 fits a line.
type RegressRequest struct {
	X      []float64 `json:"x" binding:"required"`
	Y      []float64 `json:"y" binding:"required"`
	Degree int       `json:"degree" binding:"gte=0,lte=10"`
}

// HistogramResponse adds the optional normal overlay to the bins.
type HistogramResponse struct {
	analysis.Histogram
	Overlay []float64 `json:"overlay,omitempty"`
}

// SmoothResponse is a centred moving average.
type SmoothResponse struct {
	Window int       `json:"window"`
	Values []float64 `json:"values"`
}

// RegressResponse holds exactly one of the fits plus its equation.
type RegressResponse struct {
	Linear     *analysis.LinearFit     `json:"linear,omitempty"`
	Polynomial *analysis.PolynomialFit `json:"polynomial,omitempty"`
	Equation   string                  `json:"equation"`
}

// maxKDEPoints bounds the evaluation grid of one KDE request.
const maxKDEPoints = 10000

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	in := h.inputOptions()
	if in.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, in.MaxBytes)
	}
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, tooLarge(err, in, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) kdePoints(requested int) int {
	if requested > 0 {
		return min(requested, maxKDEPoints)
	}
	return min(h.cfg.Analysis.KDEPoints, maxKDEPoints)
}

func (h *Handler) handleKDE(c *gin.Context) {
	var req ValuesRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, density.KDE(req.Values, h.kdePoints(req.Points)))
}

func (h *Handler) handleHistogram(c *gin.Context) {
	var req ValuesRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, Histogram(req.Values, req.Overlay))
}

// Histogram bins values and, when overlay is set, adds the normal curve
// fitted to their mean and standard deviation.
func Histogram(values []float64, overlay bool) HistogramResponse {
	resp := HistogramResponse{Histogram: density.Histogram(values)}
	if overlay {
		if s, ok := descriptive.Compute(values); ok {
			resp.Overlay = density.NormalOverlay(resp.Histogram, s.Mean, s.StdDev)
		}
	}
	return resp
}

func (h *Handler) handleSmooth(c *gin.Context) {
	var req ValuesRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, Smooth(req.Values, req.Window))
}

// Smooth applies the moving average; windows below 2 use the default.
func Smooth(values []float64, window int) SmoothResponse {
	if window < 2 {
		window = density.DefaultWindow(len(values))
	}
	return SmoothResponse{Window: window, Values: density.MovingAverage(values, window)}
}

func (h *Handler) handleRegress(c *gin.Context) {
	var req RegressRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := Regress(req.X, req.Y, req.Degree)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Regress fits a line for degree 0 or 1 and a polynomial otherwise.
func Regress(x, y []float64, degree int) (*RegressResponse, error) {
	if degree <= 1 {
		fit, ok := bivariate.LinearFit(x, y)
		if !ok {
			return nil, errors.New(errors.CodeNotComputable, "a line needs at least two points with distinct x values")
		}
		eq := analysis.PolynomialFit{Degree: 1, Coefficients: []float64{fit.Intercept, fit.Slope}}
		return &RegressResponse{Linear: fit, Equation: eq.String()}, nil
	}
	fit, err := bivariate.PolyFit(x, y, degree)
	if err != nil {
		return nil, err
	}
	return &RegressResponse{Polynomial: fit, Equation: fit.String()}, nil
}

// handleColumnOp runs kde, histogram, smooth or regress over a column of an
// uploaded table. Regression uses the column as y and the "x" query column.
func (h *Handler) handleColumnOp(c *gin.Context) {
	name, op := c.Param("name"), c.Param("op")
	switch op {
	case "kde", "histogram", "smooth", "regress":
	default:
		h.fail(c, errors.NotFound(fmt.Sprintf("operation %q", op)))
		return
	}

	t, err := ReadTable(c.Writer, c.Request, h.inputOptions())
	if err != nil {
		h.fail(c, err)
		return
	}
	policy := h.cfg.Analysis.Policy()
	values, err := engine.NumericColumn(t, name, policy)
	if err != nil {
		h.fail(c, err)
		return
	}

	intQuery := func(key string) (int, error) {
		v := c.Query(key)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, errors.InvalidInput(fmt.Sprintf("%s must be a non-negative integer", key))
		}
		return n, nil
	}

	switch op {
	case "kde":
		points, err := intQuery("points")
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, density.KDE(values, h.kdePoints(points)))
	case "histogram":
		c.JSON(http.StatusOK, Histogram(values, c.Query("overlay") == "true"))
	case "smooth":
		window, err := intQuery("window")
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, Smooth(values, window))
	case "regress":
		degree, err := intQuery("degree")
		if err != nil {
			h.fail(c, err)
			return
		}
		xName := c.Query("x")
		if xName == "" {
			h.fail(c, errors.InvalidInput("regress needs an x query parameter naming the predictor column"))
			return
		}
		x, y, err := engine.PairedColumns(t, xName, name, policy)
		if err != nil {
			h.fail(c, err)
			return
		}
		resp, err := Regress(x, y, degree)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
