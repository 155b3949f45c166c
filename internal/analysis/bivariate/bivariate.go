// Package bivariate relates pairs of numeric columns: Pearson correlation,
// the correlation matrix and least-squares line and polynomial fits. Pairs are
// index aligned and truncated to the shorter sample.
package bivariate

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"statgrid/domain/analysis"
)

// moments holds the centered second moments of an aligned pair.
type moments struct {
	mx, my        float64
	sxx, syy, sxy float64
}

// align truncates both samples to the shorter length.
func align(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	return x[:n], y[:n]
}

func pairMoments(x, y []float64) moments {
	var m moments
	n := float64(len(x))
	m.mx = floats.Sum(x) / n
	m.my = floats.Sum(y) / n
	dx := make([]float64, len(x))
	dy := make([]float64, len(y))
	copy(dx, x)
	copy(dy, y)
	floats.AddConst(-m.mx, dx)
	floats.AddConst(-m.my, dy)
	m.sxx = cancel(floats.Dot(dx, dx), x)
	m.syy = cancel(floats.Dot(dy, dy), y)
	m.sxy = floats.Dot(dx, dy)
	return m
}

// cancel reports a sum of squared deviations as exactly zero when it is no
// larger than the rounding left over from centering a constant sample.
func cancel(ss float64, sample []float64) float64 {
	tol := 1e-14 * floats.Norm(sample, math.Inf(1))
	if ss <= float64(len(sample))*tol*tol {
		return 0
	}
	return ss
}

// Pearson returns the correlation coefficient of the aligned pair. It needs
// two observations; a zero-variance side yields r = 0.
func Pearson(x, y []float64) (float64, bool) {
	x, y = align(x, y)
	if len(x) < 2 {
		return 0, false
	}
	m := pairMoments(x, y)
	if m.sxx == 0 || m.syy == 0 {
		return 0, true
	}
	r := m.sxy / math.Sqrt(m.sxx*m.syy)
	// rounding can push |r| a hair past 1
	return math.Max(-1, math.Min(1, r)), true
}

// CorrelationMatrix computes r for every pair of the columns in order that
// have at least two observations. It returns nil when fewer than two columns
// qualify.
func CorrelationMatrix(columns map[string][]float64, order []string) *analysis.CorrelationMatrix {
	var keys []string
	for _, name := range order {
		if len(columns[name]) >= 2 {
			keys = append(keys, name)
		}
	}
	if len(keys) < 2 {
		return nil
	}
	m := &analysis.CorrelationMatrix{Keys: keys, Values: make(map[string]map[string]float64, len(keys))}
	for _, a := range keys {
		m.Values[a] = make(map[string]float64, len(keys))
	}
	for i, a := range keys {
		for _, b := range keys[i:] {
			r, _ := Pearson(columns[a], columns[b])
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

// LinearFit fits y = slope·x + intercept by ordinary least squares. It
// returns ok=false for fewer than two points or when x has no variance. R² is
// 1 when y is constant.
func LinearFit(x, y []float64) (*analysis.LinearFit, bool) {
	x, y = align(x, y)
	if len(x) < 2 {
		return nil, false
	}
	m := pairMoments(x, y)
	if m.sxx == 0 {
		return nil, false
	}
	slope := m.sxy / m.sxx
	fit := &analysis.LinearFit{
		Slope:     slope,
		Intercept: m.my - slope*m.mx,
		N:         len(x),
	}
	fit.R2 = rSquared(x, y, fit.Predict)
	return fit, true
}

// rSquared is 1 - SSres/SStot, defined as 1 when SStot is zero.
func rSquared(x, y []float64, predict func(float64) float64) float64 {
	mean := floats.Sum(y) / float64(len(y))
	var ssTot, ssRes float64
	for i, v := range y {
		ssTot += (v - mean) * (v - mean)
		d := v - predict(x[i])
		ssRes += d * d
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}
