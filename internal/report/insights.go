package report

import (
	"fmt"
	"math"
	"strings"

	"statgrid/domain/analysis"
)

const (
	// SkewThreshold separates "symmetric" from skewed columns.
	SkewThreshold = 0.5
	// StrongCorrelation is the |r| above which a pair is called out.
	StrongCorrelation = 0.7
)

// Insight is one notable observation about a column or a column pair.
type Insight struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (i Insight) String() string {
	return i.Subject + ": " + i.Text
}

// Insights lists the shape, normality and outlier count of every numeric
// column, then the strongly correlated pairs.
func Insights(r *analysis.Report) []Insight {
	out := []Insight{}
	for _, name := range r.NumericColumns {
		s, ok := r.Stats[name]
		if !ok {
			continue
		}
		var parts []string
		switch {
		case math.Abs(s.Skewness) < SkewThreshold:
			parts = append(parts, "symmetric")
		case s.Skewness > 0:
			parts = append(parts, fmt.Sprintf("right-skewed (%s)", Num(s.Skewness)))
		default:
			parts = append(parts, fmt.Sprintf("left-skewed (%s)", Num(s.Skewness)))
		}
		if s.Normality.Tested {
			if s.Normality.Normal {
				parts = append(parts, "normal")
			} else {
				parts = append(parts, "non-normal")
			}
		}
		if n := len(s.Outliers); n > 0 {
			parts = append(parts, plural(n, "outlier"))
		}
		out = append(out, Insight{Subject: name, Text: strings.Join(parts, " · ")})
	}

	if m := r.Correlation; m != nil {
		for i, a := range m.Keys {
			for _, b := range m.Keys[i+1:] {
				v, ok := m.At(a, b)
				if !ok || math.Abs(v) <= StrongCorrelation {
					continue
				}
				sign := "+"
				if v < 0 {
					sign = "−"
				}
				out = append(out, Insight{Subject: a + " ↔ " + b, Text: fmt.Sprintf("%scorr (r=%s)", sign, Num(v))})
			}
		}
	}
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
