package dist

import (
	"fmt"
	"math"
	"strconv"

	"statgrid/domain/analysis"
)

// MinNormalitySample is the smallest n the omnibus test is run for.
const MinNormalitySample = 8

// DAgostinoPearson runs the D'Agostino-Pearson omnibus normality test from a
// sample's skewness, excess kurtosis and size.
//
// Skewness is mapped to a standard normal Zs with D'Agostino's transform and
// excess kurtosis to Zk through its large-sample variance. K² = Zs² + Zk² is
// chi-squared with 2 df, whose survival function is exactly exp(-K²/2).
func DAgostinoPearson(skew, excessKurtosis float64, n int) analysis.Normality {
	if n < MinNormalitySample {
		return analysis.Normality{Label: "N too small"}
	}
	nf := float64(n)

	y := skew * math.Sqrt((nf+1)*(nf+3)/(6*(nf-2)))
	beta2 := 3 * (nf*nf + 27*nf - 70) * (nf + 1) * (nf + 3) /
		((nf - 2) * (nf + 5) * (nf + 7) * (nf + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	ya := y / alpha
	zs := delta * math.Log(ya+math.Sqrt(ya*ya+1))

	varK := 24 * nf * (nf - 2) * (nf - 3) / ((nf + 1) * (nf + 1) * (nf + 3) * (nf + 5))
	zk := excessKurtosis / math.Sqrt(varK)

	if math.IsNaN(zs) || math.IsInf(zs, 0) {
		zs = 0
	}
	if math.IsNaN(zk) || math.IsInf(zk, 0) {
		zk = 0
	}

	k2 := zs*zs + zk*zk
	p := math.Exp(-k2 / 2)
	normal := p > analysis.Alpha

	verdict := "No"
	if normal {
		verdict = "Yes"
	}
	return analysis.Normality{
		Tested: true,
		Normal: normal,
		K2:     k2,
		PValue: &p,
		Label:  fmt.Sprintf("%s (p≈%s)", verdict, strconv.FormatFloat(analysis.Round4(p), 'f', -1, 64)),
	}
}
