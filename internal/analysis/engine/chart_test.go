package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"statgrid/domain/analysis"
	"statgrid/internal/dataset"
)

func TestSuggestChart(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	many := make([]float64, 30)
	for i := range many {
		many[i] = float64((i * 7) % 23)
	}
	short := []float64{5, 1, 9, 3, 7, 2, 8, 4, 6, 10}

	tests := []struct {
		name    string
		class   dataset.Classification
		samples map[string][]float64
		columns []string
		want    analysis.ChartSuggestion
	}{
		{
			name:    "two numeric",
			class:   dataset.Classification{Numeric: []string{"x", "y", "z"}},
			columns: []string{"x", "y", "z"},
			want:    analysis.ChartSuggestion{Type: ChartScatter, X: "x", Y: "y"},
		},
		{
			name:    "numeric with category",
			class:   dataset.Classification{Numeric: []string{"v"}, Categorical: []string{"g"}},
			columns: []string{"g", "v"},
			want:    analysis.ChartSuggestion{Type: ChartCatBar, Column: "v", Cat: "g"},
		},
		{
			name:    "few distinct values",
			class:   dataset.Classification{Numeric: []string{"v"}},
			samples: map[string][]float64{"v": {1, 2, 2, 3, 1, 1, 2, 3, 3, 1, 2}},
			columns: []string{"v"},
			want:    analysis.ChartSuggestion{Type: ChartPie, Column: "v"},
		},
		{
			name:    "time series",
			class:   dataset.Classification{Numeric: []string{"v"}},
			samples: map[string][]float64{"v": series},
			columns: []string{"v"},
			want:    analysis.ChartSuggestion{Type: ChartLine, Column: "v"},
		},
		{
			name:    "short unordered",
			class:   dataset.Classification{Numeric: []string{"v"}},
			samples: map[string][]float64{"v": short},
			columns: []string{"v"},
			want:    analysis.ChartSuggestion{Type: ChartBar, Column: "v"},
		},
		{
			name:    "long unordered",
			class:   dataset.Classification{Numeric: []string{"v"}},
			samples: map[string][]float64{"v": many},
			columns: []string{"v"},
			want:    analysis.ChartSuggestion{Type: ChartHistogram, Column: "v"},
		},
		{
			name:    "single categorical",
			class:   dataset.Classification{Categorical: []string{"g"}},
			columns: []string{"g"},
			want:    analysis.ChartSuggestion{Type: ChartPie, Column: "g"},
		},
		{
			name:    "several categorical",
			class:   dataset.Classification{Categorical: []string{"g", "h"}},
			columns: []string{"g", "h"},
			want:    analysis.ChartSuggestion{Type: ChartBar, Column: "g"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestChart(tt.class, tt.samples, tt.columns))
		})
	}
}

func TestIsTimeSeries(t *testing.T) {
	assert.False(t, IsTimeSeries([]float64{1, 2, 3, 4}))
	assert.True(t, IsTimeSeries([]float64{1, 2, 2, 3, 4}))
	// 8 of 9 steps rise: 0.889 > 0.85
	assert.True(t, IsTimeSeries([]float64{1, 2, 3, 4, 5, 4, 6, 7, 8, 9}))
	// 7 of 9: 0.778
	assert.False(t, IsTimeSeries([]float64{1, 2, 1, 4, 5, 4, 6, 7, 8, 9}))
}
