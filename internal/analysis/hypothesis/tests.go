// Package hypothesis runs the inferential tests: one-sample t, Welch's
// two-sample t, one-way ANOVA and chi-squared goodness of fit. Every test
// returns nil when its statistic is undefined for the input.
package hypothesis

import (
	"math"

	"github.com/montanaflynn/stats"

	"statgrid/domain/analysis"
	"statgrid/internal/analysis/dist"
)

// OneSample tests H0: mean = mu0. It needs n >= 2 and a non-zero sample
// standard deviation.
func OneSample(sample []float64, mu0 float64) *analysis.HypothesisResult {
	n := len(sample)
	if n < 2 {
		return nil
	}
	mean, _ := stats.Mean(sample)
	variance, _ := stats.SampleVariance(sample)
	std := math.Sqrt(variance)
	if std == 0 {
		return nil
	}
	t := (mean - mu0) / (std / math.Sqrt(float64(n)))
	df := n - 1
	p := dist.TwoTailedP(t, float64(df))
	m, mu := mean, mu0
	return &analysis.HypothesisResult{
		Kind:        analysis.TestOneSampleT,
		Test:        analysis.TestOneSampleT.Label(),
		Statistic:   analysis.Float(t),
		DF:          df,
		PValue:      p,
		Significant: p < analysis.Alpha,
		Mean:        &m,
		Mu0:         &mu,
	}
}

// Welch compares the means of two samples without assuming equal variances.
// Both samples need n >= 2 and the standard error must be non-zero. The
// Welch-Satterthwaite df is floored to an integer.
func Welch(a, b []float64) *analysis.HypothesisResult {
	n1, n2 := len(a), len(b)
	if n1 < 2 || n2 < 2 {
		return nil
	}
	m1, _ := stats.Mean(a)
	m2, _ := stats.Mean(b)
	v1, _ := stats.SampleVariance(a)
	v2, _ := stats.SampleVariance(b)
	e1 := v1 / float64(n1)
	e2 := v2 / float64(n2)
	se := math.Sqrt(e1 + e2)
	if se == 0 {
		return nil
	}
	t := (m1 - m2) / se
	df := int(math.Floor((e1 + e2) * (e1 + e2) / (e1*e1/float64(n1-1) + e2*e2/float64(n2-1))))
	p := dist.TwoTailedP(t, float64(df))
	return &analysis.HypothesisResult{
		Kind:        analysis.TestWelchT,
		Test:        analysis.TestWelchT.Label(),
		Statistic:   analysis.Float(t),
		DF:          df,
		PValue:      p,
		Significant: p < analysis.Alpha,
	}
}

// ANOVA runs a one-way analysis of variance over k >= 2 groups. It needs
// N-k > 0. When every group is constant the within-group mean square is zero
// and F is +Inf with p = 0.
func ANOVA(groups [][]float64) *analysis.HypothesisResult {
	k := len(groups)
	if k < 2 {
		return nil
	}
	n := 0
	sum := 0.0
	for _, g := range groups {
		n += len(g)
		for _, v := range g {
			sum += v
		}
	}
	dfB, dfW := k-1, n-k
	if dfW <= 0 {
		return nil
	}
	grand := sum / float64(n)

	var ssB, ssW float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		gm, _ := stats.Mean(g)
		ssB += float64(len(g)) * (gm - grand) * (gm - grand)
		for _, v := range g {
			ssW += (v - gm) * (v - gm)
		}
	}
	msB := ssB / float64(dfB)
	msW := ssW / float64(dfW)

	f := math.Inf(1)
	if msW != 0 {
		f = msB / msW
	}
	p := dist.FSurvival(f, float64(dfB), float64(dfW))
	return &analysis.HypothesisResult{
		Kind:        analysis.TestANOVA,
		Test:        analysis.TestANOVA.Label(),
		Statistic:   analysis.Float(f),
		DF:          dfB,
		DF2:         dfW,
		PValue:      p,
		Significant: p < analysis.Alpha,
	}
}

// ChiSquaredGOF tests observed category counts against a uniform expectation.
// It needs at least two categories and a positive total.
func ChiSquaredGOF(observed []float64) *analysis.HypothesisResult {
	k := len(observed)
	if k < 2 {
		return nil
	}
	total, _ := stats.Sum(observed)
	if total <= 0 {
		return nil
	}
	expected := total / float64(k)
	chi2 := 0.0
	for _, o := range observed {
		chi2 += (o - expected) * (o - expected) / expected
	}
	df := k - 1
	p := dist.ChiSquaredSurvival(chi2, float64(df))
	return &analysis.HypothesisResult{
		Kind:        analysis.TestChiSquared,
		Test:        analysis.TestChiSquared.Label(),
		Statistic:   analysis.Float(chi2),
		DF:          df,
		PValue:      p,
		Significant: p < analysis.Alpha,
	}
}
