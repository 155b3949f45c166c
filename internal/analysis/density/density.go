// Package density estimates the shape of a sample: Gaussian kernel density,
// equal-width histograms with a fitted normal overlay, and centered moving
// averages.
package density

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"statgrid/domain/analysis"
	"statgrid/internal/analysis/descriptive"
	"statgrid/internal/analysis/dist"
)

// DefaultKDEPoints is the grid size used when the caller passes points <= 0.
const DefaultKDEPoints = 100

// KDE evaluates a Gaussian kernel density estimate on an even grid of points
// spanning [min-3h, max+3h].
//
// The bandwidth is Silverman's rule h = 0.9·min(σ, IQR/1.34)·n^(-1/5) with the
// population σ; σ = 0 is replaced by 1 and IQR = 0 by σ. Samples with fewer
// than two values give an empty result.
func KDE(sample []float64, points int) analysis.KDEResult {
	if points <= 0 {
		points = DefaultKDEPoints
	}
	n := len(sample)
	if n < 2 {
		return analysis.KDEResult{Points: []float64{}, Densities: []float64{}}
	}
	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	variance, _ := stats.PopulationVariance(sample)
	std := math.Sqrt(variance)
	if std == 0 {
		std = 1
	}
	iqr := descriptive.Quantile(sorted, 0.75) - descriptive.Quantile(sorted, 0.25)
	if iqr == 0 {
		iqr = std
	}
	h := 0.9 * math.Min(std, iqr/1.34) * math.Pow(float64(n), -0.2)

	lo := sorted[0] - 3*h
	hi := sorted[n-1] + 3*h
	step := 0.0
	if points > 1 {
		step = (hi - lo) / float64(points-1)
	}
	norm := float64(n) * h * math.Sqrt(2*math.Pi)

	res := analysis.KDEResult{
		Points:    make([]float64, points),
		Densities: make([]float64, points),
		Bandwidth: h,
	}
	for i := range res.Points {
		x := lo + float64(i)*step
		sum := 0.0
		for _, v := range sample {
			u := (x - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		res.Points[i] = x
		res.Densities[i] = sum / norm
	}
	return res
}

// Histogram bins a sample into ceil(√n) equal-width bins. A zero range uses
// width 1. Values on the upper edge fall in the last bin, so the counts always
// sum to n. Labels read "lo–hi" with both edges rounded to four decimals.
func Histogram(sample []float64) analysis.Histogram {
	n := len(sample)
	if n == 0 {
		return analysis.Histogram{Edges: []float64{}, Counts: []int{}, Labels: []string{}}
	}
	min, _ := stats.Min(sample)
	max, _ := stats.Max(sample)
	bins := int(math.Ceil(math.Sqrt(float64(n))))
	width := (max - min) / float64(bins)
	if width == 0 {
		width = 1
	}

	h := analysis.Histogram{
		Edges:    make([]float64, bins+1),
		Counts:   make([]int, bins),
		Labels:   make([]string, bins),
		BinWidth: width,
	}
	for i := range h.Edges {
		h.Edges[i] = min + float64(i)*width
	}
	for _, v := range sample {
		i := int(math.Floor((v - min) / width))
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		h.Counts[i]++
	}
	for i := range h.Labels {
		h.Labels[i] = formatEdge(h.Edges[i]) + "–" + formatEdge(h.Edges[i+1])
	}
	return h
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(analysis.Round4(v), 'f', -1, 64)
}

// NormalOverlay returns, for each bin centre, the count a normal distribution
// with the given mean and standard deviation would put in that bin. It is
// all zeros when std <= 0.
func NormalOverlay(h analysis.Histogram, mean, std float64) []float64 {
	total := float64(h.Total())
	out := make([]float64, len(h.Counts))
	for i := range out {
		centre := h.Edges[i] + h.BinWidth/2
		out[i] = total * h.BinWidth * dist.NormalPDF(centre, mean, std)
	}
	return out
}

// DefaultWindow is the moving average window used when the caller passes a
// window below 2: max(3, ⌊n/10⌋).
func DefaultWindow(n int) int {
	w := n / 10
	if w < 3 {
		w = 3
	}
	return w
}

// MovingAverage smooths a sample with a centered window. Element i averages
// indices [start, min(n, start+window)) where start = max(0, i-⌊window/2⌋),
// so the window shrinks at the right edge. The output has the input's length.
func MovingAverage(sample []float64, window int) []float64 {
	n := len(sample)
	if window < 2 {
		window = DefaultWindow(n)
	}
	out := make([]float64, n)
	half := window / 2
	for i := range sample {
		start := i - half
		if start < 0 {
			start = 0
		}
		end := start + window
		if end > n {
			end = n
		}
		m, _ := stats.Mean(sample[start:end])
		out[i] = m
	}
	return out
}
