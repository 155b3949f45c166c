// Package descriptive computes the per-column summary statistics: central
// tendency, spread, quartiles, shape, confidence intervals, normality and
// Tukey outliers.
package descriptive

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"statgrid/domain/analysis"
	"statgrid/internal/analysis/dist"
)

// Critical values of the standard normal for the reported interval levels.
const (
	z90 = 1.645
	z95 = 1.960
	z99 = 2.576
)

// TukeyK is the IQR multiplier for the outlier fences.
const TukeyK = 1.5

// Compute summarises a sample. It returns ok=false for an empty sample.
//
// Variance and standard deviation are population statistics (divide by n).
// Skewness and kurtosis are the third and fourth standardized moments, with a
// zero standard deviation replaced by 1; kurtosis is reported as excess.
func Compute(sample []float64) (*analysis.DescriptiveStats, bool) {
	n := len(sample)
	if n == 0 {
		return nil, false
	}
	sorted := sortedCopy(sample)
	nf := float64(n)

	// montanaflynn/stats only errors on empty input, ruled out above.
	mean, _ := stats.Mean(sample)
	variance, _ := stats.PopulationVariance(sample)
	min, _ := stats.Min(sample)
	max, _ := stats.Max(sample)
	std := math.Sqrt(variance)

	q1 := Quantile(sorted, 0.25)
	q2 := Quantile(sorted, 0.5)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1

	skew, kurt := moments(sample, mean, std)

	se := std / math.Sqrt(nf)
	lower := q1 - TukeyK*iqr
	upper := q3 + TukeyK*iqr

	return &analysis.DescriptiveStats{
		Count:      n,
		Mean:       mean,
		Median:     q2,
		Mode:       Mode(sample),
		StdDev:     std,
		Variance:   variance,
		Min:        min,
		Max:        max,
		Range:      max - min,
		Q1:         q1,
		Q2:         q2,
		Q3:         q3,
		IQR:        iqr,
		Skewness:   skew,
		Kurtosis:   kurt,
		CI90:       interval(mean, z90*se),
		CI95:       interval(mean, z95*se),
		CI99:       interval(mean, z99*se),
		Normality:  dist.DAgostinoPearson(skew, kurt, n),
		Outliers:   outliers(sorted, lower, upper),
		LowerFence: lower,
		UpperFence: upper,
	}, true
}

// Summary is the short statistics row used for per-group tables.
// It returns ok=false for an empty sample.
func Summary(sample []float64) (analysis.Summary, bool) {
	if len(sample) == 0 {
		return analysis.Summary{}, false
	}
	sorted := sortedCopy(sample)
	mean, _ := stats.Mean(sample)
	variance, _ := stats.PopulationVariance(sample)
	return analysis.Summary{
		Count:  len(sample),
		Mean:   mean,
		Median: Quantile(sorted, 0.5),
		StdDev: math.Sqrt(variance),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}, true
}

// Quantile linearly interpolates an ascending sample at rank p·(n-1).
// It returns NaN for an empty sample; p is clamped to [0, 1].
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	p = math.Max(0, math.Min(1, p))
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// Mode returns "None" when every value occurs once, otherwise every value
// sharing the highest frequency in ascending order, joined by ", ".
func Mode(sample []float64) string {
	freq := make(map[float64]int, len(sample))
	maxFreq := 0
	for _, v := range sample {
		freq[v]++
		if freq[v] > maxFreq {
			maxFreq = freq[v]
		}
	}
	if maxFreq <= 1 {
		return "None"
	}
	var modes []float64
	for v, c := range freq {
		if c == maxFreq {
			modes = append(modes, v)
		}
	}
	sort.Float64s(modes)
	parts := make([]string, len(modes))
	for i, v := range modes {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// IsOutlier reports whether v falls strictly outside the fences.
func IsOutlier(v, lower, upper float64) bool {
	return v < lower || v > upper
}

func moments(sample []float64, mean, std float64) (skew, excessKurt float64) {
	if std == 0 {
		std = 1
	}
	var m3, m4 float64
	for _, v := range sample {
		d := (v - mean) / std
		d2 := d * d
		m3 += d2 * d
		m4 += d2 * d2
	}
	nf := float64(len(sample))
	return m3 / nf, m4/nf - 3
}

func outliers(sorted []float64, lower, upper float64) []float64 {
	out := []float64{}
	for _, v := range sorted {
		if IsOutlier(v, lower, upper) {
			out = append(out, v)
		}
	}
	return out
}

func interval(mean, margin float64) analysis.Interval {
	return analysis.Interval{Lower: mean - margin, Upper: mean + margin}
}

func sortedCopy(sample []float64) []float64 {
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)
	return sorted
}
