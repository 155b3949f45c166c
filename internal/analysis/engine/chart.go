package engine

import (
	"statgrid/domain/analysis"
	"statgrid/internal/dataset"
)

// Chart types returned by SuggestChart.
const (
	ChartScatter   = "scatter"
	ChartCatBar    = "catbar"
	ChartPie       = "pie"
	ChartLine      = "line"
	ChartBar       = "bar"
	ChartHistogram = "histogram"
)

const (
	pieMaxDistinct     = 8
	barMaxValues       = 20
	seriesMinLength    = 5
	seriesMonotonicity = 0.85
)

// SuggestChart picks a chart for the table:
//
//   - two or more numeric columns: scatter of the first two;
//   - one numeric and one categorical column: bar of the numeric by category;
//   - one numeric column: pie for at most 8 distinct values, line for a time
//     series, bar for at most 20 values, histogram otherwise;
//   - no numeric column: pie for a single column, bar of the first otherwise.
func SuggestChart(class dataset.Classification, samples map[string][]float64, columns []string) analysis.ChartSuggestion {
	num, cat := class.Numeric, class.Categorical
	switch {
	case len(num) >= 2:
		return analysis.ChartSuggestion{Type: ChartScatter, X: num[0], Y: num[1]}
	case len(num) == 1 && len(cat) == 1:
		return analysis.ChartSuggestion{Type: ChartCatBar, Column: num[0], Cat: cat[0]}
	case len(num) == 1:
		vals := samples[num[0]]
		switch {
		case distinct(vals) <= pieMaxDistinct:
			return analysis.ChartSuggestion{Type: ChartPie, Column: num[0]}
		case IsTimeSeries(vals):
			return analysis.ChartSuggestion{Type: ChartLine, Column: num[0]}
		case len(vals) <= barMaxValues:
			return analysis.ChartSuggestion{Type: ChartBar, Column: num[0]}
		}
		return analysis.ChartSuggestion{Type: ChartHistogram, Column: num[0]}
	case len(columns) == 1:
		return analysis.ChartSuggestion{Type: ChartPie, Column: columns[0]}
	case len(columns) > 1:
		return analysis.ChartSuggestion{Type: ChartBar, Column: columns[0]}
	}
	return analysis.ChartSuggestion{}
}

// IsTimeSeries reports whether more than 85% of consecutive steps are
// non-decreasing. Samples shorter than five never qualify.
func IsTimeSeries(sample []float64) bool {
	if len(sample) < seriesMinLength {
		return false
	}
	up := 0
	for i := 1; i < len(sample); i++ {
		if sample[i] >= sample[i-1] {
			up++
		}
	}
	return float64(up)/float64(len(sample)-1) > seriesMonotonicity
}

func distinct(sample []float64) int {
	seen := make(map[float64]struct{}, len(sample))
	for _, v := range sample {
		seen[v] = struct{}{}
	}
	return len(seen)
}
