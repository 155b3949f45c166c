package bivariate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"statgrid/domain/core"
)

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{2.1, 3.9, 6.2, 7.8, 10.1, 12.2}

	r, ok := Pearson(x, y)
	require.True(t, ok)
	assert.InDelta(t, stat.Correlation(x, y, nil), r, 1e-12)

	rr, _ := Pearson(y, x)
	assert.Equal(t, r, rr)

	self, _ := Pearson(x, x)
	assert.InDelta(t, 1.0, self, 1e-12)

	neg := []float64{6, 5, 4, 3, 2, 1}
	anti, _ := Pearson(x, neg)
	assert.InDelta(t, -1.0, anti, 1e-12)
}

func TestPearson_Edges(t *testing.T) {
	_, ok := Pearson([]float64{1}, []float64{2})
	assert.False(t, ok)

	r, ok := Pearson([]float64{3, 3, 3}, []float64{1, 2, 3})
	assert.True(t, ok)
	assert.Equal(t, 0.0, r)

	r, ok = Pearson([]float64{0.1, 0.1, 0.1, 0.1}, []float64{1, 5, 2, 8})
	assert.True(t, ok)
	assert.Equal(t, 0.0, r)

	// the longer sample is truncated
	r, ok = Pearson([]float64{1, 2, 3}, []float64{2, 4, 6, -100, 50})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestPearson_LargeOffset(t *testing.T) {
	x := []float64{1e6, 1e6 + 1, 1e6 + 2, 1e6 + 3}
	y := []float64{1, 3, 2, 4}
	r, ok := Pearson(x, y)
	require.True(t, ok)
	assert.InDelta(t, 0.8, r, 1e-9)
}

func TestCorrelationMatrix(t *testing.T) {
	cols := map[string][]float64{
		"a": {1, 2, 3, 4},
		"b": {2, 4, 5, 9},
		"c": {7},
		"d": {4, 3, 2, 1},
	}
	m := CorrelationMatrix(cols, []string{"a", "b", "c", "d"})
	require.NotNil(t, m)
	assert.Equal(t, []string{"a", "b", "d"}, m.Keys)

	for _, a := range m.Keys {
		v, ok := m.At(a, a)
		require.True(t, ok)
		assert.InDelta(t, 1.0, v, 1e-12)
		for _, b := range m.Keys {
			ab, _ := m.At(a, b)
			ba, _ := m.At(b, a)
			assert.Equal(t, ab, ba)
			assert.GreaterOrEqual(t, ab, -1.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
	ad, _ := m.At("a", "d")
	assert.InDelta(t, -1.0, ad, 1e-12)

	_, ok := m.At("a", "c")
	assert.False(t, ok)
}

func TestCorrelationMatrix_TooFewColumns(t *testing.T) {
	assert.Nil(t, CorrelationMatrix(map[string][]float64{"a": {1, 2}, "b": {1}}, []string{"a", "b"}))
	assert.Nil(t, CorrelationMatrix(nil, nil))
}

func TestLinearFit(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v + 3
	}
	fit, ok := LinearFit(x, y)
	require.True(t, ok)
	assert.InDelta(t, 2.0, fit.Slope, 1e-12)
	assert.InDelta(t, 3.0, fit.Intercept, 1e-12)
	assert.InDelta(t, 1.0, fit.R2, 1e-12)
	assert.Equal(t, 5, fit.N)
	assert.InDelta(t, 23.0, fit.Predict(10), 1e-10)
}

func TestLinearFit_Noisy(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 3, 2, 5, 4}
	fit, ok := LinearFit(x, y)
	require.True(t, ok)
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	assert.InDelta(t, beta, fit.Slope, 1e-12)
	assert.InDelta(t, alpha, fit.Intercept, 1e-12)
	assert.InDelta(t, stat.RSquared(x, y, nil, alpha, beta), fit.R2, 1e-12)
}

func TestLinearFit_Edges(t *testing.T) {
	_, ok := LinearFit([]float64{1}, []float64{1})
	assert.False(t, ok)

	_, ok = LinearFit([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.False(t, ok)

	fit, ok := LinearFit([]float64{1, 2, 3}, []float64{4, 4, 4})
	require.True(t, ok)
	assert.Equal(t, 0.0, fit.Slope)
	assert.Equal(t, 1.0, fit.R2)
}

func TestPolyFit_RecoversQuadratic(t *testing.T) {
	x := []float64{-2, -1, 0, 1, 2, 3}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 0.5*v*v - v + 2
	}
	fit, err := PolyFit(x, y, 2)
	require.NoError(t, err)
	require.Len(t, fit.Coefficients, 3)
	assert.InDelta(t, 2.0, fit.Coefficients[0], 1e-9)
	assert.InDelta(t, -1.0, fit.Coefficients[1], 1e-9)
	assert.InDelta(t, 0.5, fit.Coefficients[2], 1e-9)
	assert.InDelta(t, 1.0, fit.R2, 1e-9)
	assert.Equal(t, "0.5x² - 1x + 2", fit.String())
}

func TestPolyFit_DegreeOneMatchesLinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 3, 2, 5, 4}
	poly, err := PolyFit(x, y, 1)
	require.NoError(t, err)
	lin, ok := LinearFit(x, y)
	require.True(t, ok)
	assert.InDelta(t, lin.Intercept, poly.Coefficients[0], 1e-9)
	assert.InDelta(t, lin.Slope, poly.Coefficients[1], 1e-9)
	assert.InDelta(t, lin.R2, poly.R2, 1e-9)
}

func TestPolyFit_Errors(t *testing.T) {
	_, err := PolyFit([]float64{1, 2}, []float64{1, 2}, 2)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
	assert.True(t, core.IsNotComputable(err))

	_, err = PolyFit([]float64{2, 2, 2, 2}, []float64{1, 2, 3, 4}, 2)
	assert.ErrorIs(t, err, core.ErrSingularSystem)

	_, err = PolyFit([]float64{1, 2, 3}, []float64{1, 2, 3}, -1)
	assert.ErrorIs(t, err, core.ErrInvalidDegree)
	assert.True(t, core.IsInputError(err))
}

func TestPolyFit_DegreeZeroIsMean(t *testing.T) {
	fit, err := PolyFit([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 0)
	require.NoError(t, err)
	require.Len(t, fit.Coefficients, 1)
	assert.InDelta(t, 5.0, fit.Coefficients[0], 1e-12)
	assert.InDelta(t, 0.0, fit.R2, 1e-12)
	assert.Equal(t, "5", fit.String())
}
