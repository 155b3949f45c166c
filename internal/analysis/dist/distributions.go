// Package dist provides the distribution functions used by the hypothesis
// tests and the normality check. Out-of-domain inputs (df <= 0, x <= 0) map to
// the analytic boundary value instead of NaN.
package dist

import (
	"math"

	"statgrid/internal/analysis/special"
)

// TTailProbability approximates the one-tailed probability P(T > |t|) of a
// Student-t variable with df degrees of freedom.
//
// It applies the Wilson-Hilferty cube-root normal transform to t², which is
// F(1, df) distributed, and evaluates the normal tail through special.Erfc.
// The two-tailed p-value is twice the returned value.
func TTailProbability(t, df float64) float64 {
	if df <= 0 || math.IsNaN(df) || math.IsNaN(t) {
		return 0.5
	}
	if math.IsInf(t, 0) {
		return 0
	}
	if t == 0 {
		return 0.5
	}
	c := math.Cbrt(t * t)
	a := 2 / (9 * df) // variance term of the F(1, df) denominator
	const b = 2.0 / 9 // variance term of the numerator, d1 = 1
	z := ((1-a)*c - (1 - b)) / math.Sqrt(a*c*c+b)
	// P(F > t²) = 0.5·erfc(z/√2); half of that lies in each tail of T.
	return 0.25 * special.Erfc(z/math.Sqrt2)
}

// TwoTailedP returns the two-sided p-value for a t statistic, capped at 1.
func TwoTailedP(t, df float64) float64 {
	return math.Min(1, 2*TTailProbability(t, df))
}

// FCDF returns P(F <= f) for an F(d1, d2) variable.
func FCDF(f, d1, d2 float64) float64 {
	if d1 <= 0 || d2 <= 0 || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if math.IsInf(f, 1) {
		return 1
	}
	x := d1 * f / (d1*f + d2)
	return special.RegularizedIncompleteBeta(x, d1/2, d2/2)
}

// FSurvival returns P(F > f), the ANOVA p-value.
func FSurvival(f, d1, d2 float64) float64 {
	if d1 <= 0 || d2 <= 0 {
		return 1
	}
	return 1 - FCDF(f, d1, d2)
}

// ChiSquaredCDF returns P(X <= x) for a chi-squared variable with df degrees of freedom.
func ChiSquaredCDF(x, df float64) float64 {
	if df <= 0 || math.IsNaN(x) || x <= 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	return special.RegularizedIncompleteGamma(df/2, x/2)
}

// ChiSquaredSurvival returns P(X > x).
func ChiSquaredSurvival(x, df float64) float64 {
	if df <= 0 {
		return 1
	}
	return 1 - ChiSquaredCDF(x, df)
}

// NormalPDF is the Gaussian density with the given mean and standard deviation.
func NormalPDF(x, mean, std float64) float64 {
	if std <= 0 {
		return 0
	}
	u := (x - mean) / std
	return math.Exp(-0.5*u*u) / (std * math.Sqrt(2*math.Pi))
}
