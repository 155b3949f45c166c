// Package effectsize measures how large a group difference is, independent of
// sample size: Cohen's d for two groups and eta-squared for any number.
package effectsize

import (
	"math"

	"github.com/montanaflynn/stats"

	"statgrid/domain/analysis"
	"statgrid/internal/dataset"
)

// MinGroupSize is the smallest group that takes part in an effect size.
const MinGroupSize = 2

// CohensD returns (mean(a) - mean(b)) / pooled sample SD, or 0 when the pooled
// SD is zero. Both samples need at least two values.
func CohensD(a, b []float64) (float64, bool) {
	n1, n2 := len(a), len(b)
	if n1 < MinGroupSize || n2 < MinGroupSize {
		return 0, false
	}
	m1, _ := stats.Mean(a)
	m2, _ := stats.Mean(b)
	v1, _ := stats.SampleVariance(a)
	v2, _ := stats.SampleVariance(b)
	pooled := math.Sqrt((float64(n1-1)*v1 + float64(n2-1)*v2) / float64(n1+n2-2))
	if pooled == 0 {
		return 0, true
	}
	return (m1 - m2) / pooled, true
}

// EtaSquared returns SS_between / SS_total over the groups, or 0 when SS_total
// is zero. It needs at least two groups.
func EtaSquared(groups [][]float64) (float64, bool) {
	if len(groups) < 2 {
		return 0, false
	}
	var all []float64
	for _, g := range groups {
		all = append(all, g...)
	}
	grand, err := stats.Mean(all)
	if err != nil {
		return 0, false
	}
	var ssB, ssT float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		gm, _ := stats.Mean(g)
		ssB += float64(len(g)) * (gm - grand) * (gm - grand)
	}
	for _, v := range all {
		ssT += (v - grand) * (v - grand)
	}
	if ssT == 0 {
		return 0, true
	}
	return ssB / ssT, true
}

// CohensDMagnitude bands |d| at 0.2, 0.5 and 0.8.
func CohensDMagnitude(d float64) analysis.Magnitude {
	return band(math.Abs(d), 0.2, 0.5, 0.8)
}

// EtaSquaredMagnitude bands η² at 0.01, 0.06 and 0.14.
func EtaSquaredMagnitude(eta2 float64) analysis.Magnitude {
	return band(eta2, 0.01, 0.06, 0.14)
}

func band(v, small, medium, large float64) analysis.Magnitude {
	switch {
	case v < small:
		return analysis.MagnitudeNegligible
	case v < medium:
		return analysis.MagnitudeSmall
	case v < large:
		return analysis.MagnitudeMedium
	}
	return analysis.MagnitudeLarge
}

// Compute produces the effect sizes of every numeric column across the
// partition. Groups with fewer than two values are dropped first; Cohen's d is
// reported when exactly two groups remain and eta-squared when two or more do.
func Compute(p *dataset.GroupPartition, numeric []string) []analysis.EffectSizeResult {
	results := []analysis.EffectSizeResult{}
	if p == nil {
		return results
	}
	for _, name := range numeric {
		labels, groups := p.Groups(name, MinGroupSize)
		if len(groups) == 2 {
			if d, ok := CohensD(groups[0], groups[1]); ok {
				results = append(results, analysis.EffectSizeResult{
					Kind:      analysis.EffectCohensD,
					Measure:   analysis.EffectCohensD.Label(),
					Column:    name,
					Value:     d,
					Magnitude: CohensDMagnitude(d),
					Groups:    labels,
				})
			}
		}
		if len(groups) >= 2 {
			if eta2, ok := EtaSquared(groups); ok {
				results = append(results, analysis.EffectSizeResult{
					Kind:      analysis.EffectEtaSquared,
					Measure:   analysis.EffectEtaSquared.Label(),
					Column:    name,
					Value:     eta2,
					Magnitude: EtaSquaredMagnitude(eta2),
					Groups:    labels,
				})
			}
		}
	}
	return results
}
