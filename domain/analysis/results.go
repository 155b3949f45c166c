package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TestKind tags the variant carried by a HypothesisResult.
type TestKind string

const (
	TestOneSampleT TestKind = "one_sample_t"
	TestWelchT     TestKind = "welch_t"
	TestANOVA      TestKind = "anova"
	TestChiSquared TestKind = "chi_squared"
)

// Label returns the human identifying name of the test.
func (k TestKind) Label() string {
	switch k {
	case TestOneSampleT:
		return "1-sample t"
	case TestWelchT:
		return "2-sample t (Welch)"
	case TestANOVA:
		return "One-way ANOVA"
	case TestChiSquared:
		return "Chi-squared"
	}
	return string(k)
}

// HypothesisResult is the outcome of one inferential test.
// DF2 is only set for ANOVA, where DF is the between-groups df.
type HypothesisResult struct {
	Kind        TestKind `json:"kind"`
	Test        string   `json:"test"`
	Column      string   `json:"column"`
	Variable    string   `json:"variable,omitempty"`
	GroupBy     string   `json:"group_by,omitempty"`
	Statistic   Float    `json:"statistic"`
	DF          int      `json:"df"`
	DF2         int      `json:"df2,omitempty"`
	PValue      float64  `json:"p_value"`
	Significant bool     `json:"significant"`

	Mean       *float64           `json:"mean,omitempty"`
	Mu0        *float64           `json:"mu0,omitempty"`
	Groups     []string           `json:"groups,omitempty"`
	GroupMeans map[string]float64 `json:"group_means,omitempty"`
}

// StatisticName returns the conventional symbol for the test statistic.
func (r HypothesisResult) StatisticName() string {
	switch r.Kind {
	case TestANOVA:
		return "F"
	case TestChiSquared:
		return "χ²"
	}
	return "t"
}

// DFString renders the degrees of freedom, as a pair for ANOVA.
func (r HypothesisResult) DFString() string {
	if r.Kind == TestANOVA {
		return fmt.Sprintf("%d,%d", r.DF, r.DF2)
	}
	return strconv.Itoa(r.DF)
}

// EffectKind tags the variant carried by an EffectSizeResult.
type EffectKind string

const (
	EffectCohensD    EffectKind = "cohens_d"
	EffectEtaSquared EffectKind = "eta_squared"
)

// Label returns the display name of the measure.
func (k EffectKind) Label() string {
	switch k {
	case EffectCohensD:
		return "Cohen's d"
	case EffectEtaSquared:
		return "Eta-squared (η²)"
	}
	return string(k)
}

// Magnitude is the conventional banding of an effect size.
type Magnitude string

const (
	MagnitudeNegligible Magnitude = "negligible"
	MagnitudeSmall      Magnitude = "small"
	MagnitudeMedium     Magnitude = "medium"
	MagnitudeLarge      Magnitude = "large"
)

// EffectSizeResult is a standardized effect measure for one numeric column.
type EffectSizeResult struct {
	Kind      EffectKind `json:"kind"`
	Measure   string     `json:"measure"`
	Column    string     `json:"column"`
	Value     float64    `json:"value"`
	Magnitude Magnitude  `json:"magnitude"`
	Groups    []string   `json:"groups,omitempty"`
}

// CorrelationMatrix holds pairwise Pearson r for the numeric columns in Keys order.
type CorrelationMatrix struct {
	Keys   []string                      `json:"keys"`
	Values map[string]map[string]float64 `json:"values"`
}

// At returns r for the pair, false if either column is absent.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	row, ok := m.Values[a]
	if !ok {
		return 0, false
	}
	v, ok := row[b]
	return v, ok
}

// LinearFit is a simple least-squares line y = Slope*x + Intercept.
type LinearFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	N         int     `json:"n"`
}

// Predict evaluates the line at x.
func (f LinearFit) Predict(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// PolynomialFit is a least-squares polynomial; Coefficients[i] multiplies x^i.
type PolynomialFit struct {
	Degree       int       `json:"degree"`
	Coefficients []float64 `json:"coefficients"`
	R2           float64   `json:"r2"`
	N            int       `json:"n"`
}

// Predict evaluates the polynomial at x using Horner's rule.
func (f PolynomialFit) Predict(x float64) float64 {
	y := 0.0
	for i := len(f.Coefficients) - 1; i >= 0; i-- {
		y = y*x + f.Coefficients[i]
	}
	return y
}

// String renders the fit highest degree first, e.g. "2x² + 0.5x - 1".
func (f PolynomialFit) String() string {
	terms := make([]string, 0, len(f.Coefficients))
	for i := len(f.Coefficients) - 1; i >= 0; i-- {
		c := strconv.FormatFloat(math.Round(f.Coefficients[i]*1e3)/1e3, 'f', -1, 64)
		switch i {
		case 0:
			terms = append(terms, c)
		case 1:
			terms = append(terms, c+"x")
		case 2:
			terms = append(terms, c+"x²")
		default:
			terms = append(terms, c+"x^"+strconv.Itoa(i))
		}
	}
	return strings.ReplaceAll(strings.Join(terms, " + "), "+ -", "- ")
}

// KDEResult is a Gaussian kernel density estimate sampled on an even grid.
type KDEResult struct {
	Points    []float64 `json:"points"`
	Densities []float64 `json:"densities"`
	Bandwidth float64   `json:"bandwidth"`
}

// Histogram holds equal-width bin counts. Edges has len(Counts)+1 entries.
type Histogram struct {
	Edges    []float64 `json:"edges"`
	Counts   []int     `json:"counts"`
	Labels   []string  `json:"labels"`
	BinWidth float64   `json:"bin_width"`
}

// Total returns the number of observations binned.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// OutlierCell locates a raw grid cell outside its column's fences.
type OutlierCell struct {
	Column string  `json:"column"`
	Row    int     `json:"row"`
	Value  float64 `json:"value"`
}

// ChartSuggestion is the chart type picked for a table plus the columns it uses.
type ChartSuggestion struct {
	Type   string `json:"type"`
	X      string `json:"x,omitempty"`
	Y      string `json:"y,omitempty"`
	Column string `json:"column,omitempty"`
	Cat    string `json:"cat,omitempty"`
}

// Report is everything produced by one analyze call over a table.
type Report struct {
	Columns            []string                          `json:"columns"`
	NumericColumns     []string                          `json:"numeric_columns"`
	CategoricalColumns []string                          `json:"categorical_columns"`
	Stats              map[string]DescriptiveStats       `json:"stats"`
	Correlation        *CorrelationMatrix                `json:"correlation,omitempty"`
	GroupBy            string                            `json:"group_by,omitempty"`
	GroupLabels        []string                          `json:"group_labels,omitempty"`
	GroupStats         map[string]map[string]Summary     `json:"group_stats,omitempty"`
	Hypotheses         []HypothesisResult                `json:"hypotheses"`
	EffectSizes        []EffectSizeResult                `json:"effect_sizes"`
	OutlierCells       []OutlierCell                     `json:"outlier_cells,omitempty"`
	Chart              ChartSuggestion                   `json:"chart"`
}
