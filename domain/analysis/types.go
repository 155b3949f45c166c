package analysis

import (
	"encoding/json"
	"math"
	"strconv"
)

// Alpha is the significance threshold shared by every hypothesis test.
const Alpha = 0.05

// Float is a float64 that survives JSON encoding when it is not finite.
// ANOVA reports F=+Inf for perfectly separated groups and that value has to
// reach the caller intact.
type Float float64

// MarshalJSON encodes ±Inf and NaN as the strings "Infinity", "-Infinity" and "NaN".
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts both plain numbers and the string forms written by MarshalJSON.
func (f *Float) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "Infinity":
			*f = Float(math.Inf(1))
		case "-Infinity":
			*f = Float(math.Inf(-1))
		case "NaN":
			*f = Float(math.NaN())
		default:
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			*f = Float(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Interval is a closed confidence interval around a point estimate.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Normality is the verdict of the D'Agostino-Pearson omnibus test.
// PValue is nil when the sample was too small to test.
type Normality struct {
	Tested bool     `json:"tested"`
	Normal bool     `json:"normal"`
	K2     float64  `json:"k2,omitempty"`
	PValue *float64 `json:"p_value"`
	Label  string   `json:"label"`
}

// DescriptiveStats summarises a single numeric sample.
type DescriptiveStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Mode     string  `json:"mode"`
	StdDev   float64 `json:"std_dev"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Q1       float64 `json:"q1"`
	Q2       float64 `json:"q2"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess

	CI90 Interval `json:"ci90"`
	CI95 Interval `json:"ci95"`
	CI99 Interval `json:"ci99"`

	Normality  Normality `json:"normality"`
	Outliers   []float64 `json:"outliers"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
}

// Rounded returns a copy with every numeric field rounded to four decimals.
// Rounding is for presentation only; keep the original for further computation.
func (s DescriptiveStats) Rounded() DescriptiveStats {
	out := s
	for _, f := range []*float64{
		&out.Mean, &out.Median, &out.StdDev, &out.Variance, &out.Min, &out.Max,
		&out.Range, &out.Q1, &out.Q2, &out.Q3, &out.IQR, &out.Skewness, &out.Kurtosis,
		&out.CI90.Lower, &out.CI90.Upper, &out.CI95.Lower, &out.CI95.Upper,
		&out.CI99.Lower, &out.CI99.Upper, &out.LowerFence, &out.UpperFence,
		&out.Normality.K2,
	} {
		*f = Round4(*f)
	}
	if s.Normality.PValue != nil {
		p := Round4(*s.Normality.PValue)
		out.Normality.PValue = &p
	}
	out.Outliers = make([]float64, len(s.Outliers))
	for i, v := range s.Outliers {
		out.Outliers[i] = Round4(v)
	}
	return out
}

// Summary is the short per-group statistics row.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Round4 rounds half away from zero to four decimal places.
func Round4(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*1e4) / 1e4
}
