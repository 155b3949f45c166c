package density

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKDE_GridAndBandwidth(t *testing.T) {
	sample := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 9}
	res := KDE(sample, 0)
	require.Len(t, res.Points, DefaultKDEPoints)
	require.Len(t, res.Densities, DefaultKDEPoints)
	assert.Greater(t, res.Bandwidth, 0.0)

	assert.InDelta(t, 1-3*res.Bandwidth, res.Points[0], 1e-12)
	assert.InDelta(t, 9+3*res.Bandwidth, res.Points[len(res.Points)-1], 1e-9)
	for i := 1; i < len(res.Points); i++ {
		assert.Greater(t, res.Points[i], res.Points[i-1])
	}
	for _, d := range res.Densities {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestKDE_IntegratesToAboutOne(t *testing.T) {
	sample := []float64{-1.2, -0.4, 0, 0.3, 0.8, 1.1, 1.5, 2.6}
	res := KDE(sample, 400)
	step := res.Points[1] - res.Points[0]
	area := 0.0
	for _, d := range res.Densities {
		area += d * step
	}
	// ±3h covers all but ~0.3% of each kernel's mass
	assert.InDelta(t, 1.0, area, 0.01)
}

func TestKDE_ConstantSample(t *testing.T) {
	res := KDE([]float64{5, 5, 5, 5}, 50)
	require.Len(t, res.Points, 50)
	// σ and IQR are both replaced by 1
	assert.InDelta(t, 0.9/1.34*math.Pow(4, -0.2), res.Bandwidth, 1e-12)
}

func TestKDE_TooSmall(t *testing.T) {
	res := KDE([]float64{3}, 100)
	assert.Empty(t, res.Points)
	assert.Empty(t, res.Densities)
	assert.NotNil(t, res.Points)
}

func TestHistogram(t *testing.T) {
	sample := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	h := Histogram(sample)
	// ceil(sqrt(10)) = 4 bins of width 2.25
	require.Len(t, h.Counts, 4)
	assert.Len(t, h.Edges, 5)
	assert.Equal(t, 2.25, h.BinWidth)
	assert.Equal(t, []int{3, 2, 2, 3}, h.Counts)
	assert.Equal(t, len(sample), h.Total())
	assert.Equal(t, "0–2.25", h.Labels[0])
	assert.Equal(t, "6.75–9", h.Labels[3])
}

func TestHistogram_ZeroRange(t *testing.T) {
	h := Histogram([]float64{4, 4, 4, 4})
	assert.Equal(t, 1.0, h.BinWidth)
	assert.Equal(t, []int{4, 0}, h.Counts)
	assert.Equal(t, "4–5", h.Labels[0])
}

func TestHistogram_CountsAlwaysSumToN(t *testing.T) {
	samples := [][]float64{
		{0.1, 0.2, 0.3},
		{-5, 100, 3.3, 3.3, 7, 1e-9},
		{1, 2},
	}
	for _, s := range samples {
		assert.Equal(t, len(s), Histogram(s).Total())
	}
	assert.Empty(t, Histogram(nil).Counts)
}

func TestNormalOverlay(t *testing.T) {
	sample := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	h := Histogram(sample)
	overlay := NormalOverlay(h, 4.5, 2.87)
	require.Len(t, overlay, len(h.Counts))
	// symmetric bins around the mean give a symmetric overlay
	assert.InDelta(t, overlay[0], overlay[3], 1e-12)
	assert.InDelta(t, overlay[1], overlay[2], 1e-12)
	assert.Greater(t, overlay[1], overlay[0])

	flat := NormalOverlay(h, 4.5, 0)
	assert.Equal(t, []float64{0, 0, 0, 0}, flat)
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, []float64{2, 2, 3, 4, 4.5}, got)
}

func TestMovingAverage_DefaultWindow(t *testing.T) {
	assert.Equal(t, 3, DefaultWindow(5))
	assert.Equal(t, 3, DefaultWindow(39))
	assert.Equal(t, 4, DefaultWindow(40))

	sample := []float64{3, 1, 4, 1, 5}
	assert.Equal(t, MovingAverage(sample, 3), MovingAverage(sample, 0))
	assert.Equal(t, MovingAverage(sample, 3), MovingAverage(sample, 1))
}

func TestMovingAverage_PreservesLength(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 50} {
		sample := make([]float64, n)
		for i := range sample {
			sample[i] = float64(i * i)
		}
		assert.Len(t, MovingAverage(sample, 4), n)
	}
}
