// Package engine runs the full analysis of a table: per-column descriptive
// statistics, correlation, grouped comparisons, effect sizes, outlier cells
// and a chart suggestion, assembled into one analysis.Report.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"statgrid/adapters/datareadiness/coercer"
	"statgrid/domain/analysis"
	"statgrid/domain/core"
	"statgrid/internal/analysis/bivariate"
	"statgrid/internal/analysis/descriptive"
	"statgrid/internal/analysis/effectsize"
	"statgrid/internal/analysis/hypothesis"
	"statgrid/internal/dataset"
)

// Options tune a single Analyze call.
type Options struct {
	Policy coercer.NumericPolicy
	// Mu0 is the hypothesised mean of the one-sample t-tests.
	Mu0 float64
	// GroupBy names the categorical column for grouped statistics. Empty
	// selects the first categorical column.
	GroupBy     string
	Correlation bool
	// Workers bounds how many columns are summarised concurrently; <= 0 uses GOMAXPROCS.
	Workers int
}

// DefaultOptions enables every section with the default numeric policy.
func DefaultOptions() Options {
	return Options{
		Policy:      coercer.DefaultNumericPolicy(),
		Correlation: true,
	}
}

// Analyze computes the report for t. It fails only on caller errors (an empty
// table or an unusable GroupBy column) or when ctx is cancelled; statistics
// that cannot be computed are simply left out of the report.
func Analyze(ctx context.Context, t *dataset.Table, opts Options) (*analysis.Report, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	class := dataset.Classify(t, opts.Policy)
	samples, err := dataset.Samples(t, class.Numeric, opts.Policy)
	if err != nil {
		return nil, err
	}

	report := &analysis.Report{
		Columns:            t.Names(),
		NumericColumns:     nonNil(class.Numeric),
		CategoricalColumns: nonNil(class.Categorical),
		Hypotheses:         []analysis.HypothesisResult{},
		EffectSizes:        []analysis.EffectSizeResult{},
	}

	stats, err := describeColumns(ctx, class.Numeric, samples, opts.Workers)
	if err != nil {
		return nil, err
	}
	report.Stats = stats
	report.OutlierCells = outlierCells(t, class.Numeric, stats, opts.Policy)

	if opts.Correlation {
		report.Correlation = bivariate.CorrelationMatrix(samples, class.Numeric)
	}

	groupBy, err := resolveGroupBy(t, class, opts)
	if err != nil {
		return nil, err
	}
	var partition *dataset.GroupPartition
	var categories []string
	if groupBy != "" && len(class.Numeric) > 0 {
		partition, err = dataset.Partition(t, groupBy, class.Numeric, opts.Policy)
		if err != nil {
			return nil, err
		}
		categories, _ = t.Column(groupBy)
		report.GroupBy = groupBy
		report.GroupLabels = partition.Labels
		report.GroupStats = groupSummaries(partition, class.Numeric)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Hypotheses = hypothesis.Run(hypothesis.Input{
		Numeric:    class.Numeric,
		Samples:    samples,
		Partition:  partition,
		Categories: categories,
		Mu0:        opts.Mu0,
	})
	report.EffectSizes = effectsize.Compute(partition, class.Numeric)
	report.Chart = SuggestChart(class, samples, report.Columns)
	return report, nil
}

// describeColumns computes descriptive statistics for every numeric column
// with a bounded number of goroutines. Each result lands in its column's slot,
// so the outcome does not depend on scheduling.
func describeColumns(ctx context.Context, names []string, samples map[string][]float64, workers int) (map[string]analysis.DescriptiveStats, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	slots := make([]*analysis.DescriptiveStats, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i := i
		sample := samples[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if s, ok := descriptive.Compute(sample); ok {
				slots[i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]analysis.DescriptiveStats, len(names))
	for i, name := range names {
		if slots[i] != nil {
			out[name] = *slots[i]
		}
	}
	return out, nil
}

func resolveGroupBy(t *dataset.Table, class dataset.Classification, opts Options) (string, error) {
	if opts.GroupBy == "" {
		if len(class.Categorical) == 0 {
			return "", nil
		}
		return class.Categorical[0], nil
	}
	if !t.Has(opts.GroupBy) {
		return "", core.NewUnknownColumnError(opts.GroupBy)
	}
	for _, c := range class.Categorical {
		if c == opts.GroupBy {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrNotCategorical, opts.GroupBy)
}

func groupSummaries(p *dataset.GroupPartition, numeric []string) map[string]map[string]analysis.Summary {
	out := make(map[string]map[string]analysis.Summary, len(numeric))
	for _, name := range numeric {
		row := make(map[string]analysis.Summary, len(p.Labels))
		for _, label := range p.Labels {
			if s, ok := descriptive.Summary(p.Samples[label][name]); ok {
				row[label] = s
			}
		}
		out[name] = row
	}
	return out
}

// outlierCells locates the raw cells whose parsed value lies outside the
// column's Tukey fences. Rows are zero based.
func outlierCells(t *dataset.Table, numeric []string, stats map[string]analysis.DescriptiveStats, policy coercer.NumericPolicy) []analysis.OutlierCell {
	var cells []analysis.OutlierCell
	for _, name := range numeric {
		s, ok := stats[name]
		if !ok || len(s.Outliers) == 0 {
			continue
		}
		values, _ := t.Column(name)
		for row, raw := range values {
			v, ok := policy.Parse(raw)
			if ok && descriptive.IsOutlier(v, s.LowerFence, s.UpperFence) {
				cells = append(cells, analysis.OutlierCell{Column: name, Row: row, Value: v})
			}
		}
	}
	return cells
}

// NumericColumn returns the sample of a column that classifies as numeric.
func NumericColumn(t *dataset.Table, name string, policy coercer.NumericPolicy) ([]float64, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !policy.IsNumeric(values) {
		return nil, fmt.Errorf("%w: %q", core.ErrNotNumeric, name)
	}
	return policy.Sample(values), nil
}

// PairedColumns returns the x and y values of the rows where both columns
// hold a parseable number. x must classify as numeric.
func PairedColumns(t *dataset.Table, xName, yName string, policy coercer.NumericPolicy) ([]float64, []float64, error) {
	if _, err := NumericColumn(t, xName, policy); err != nil {
		return nil, nil, err
	}
	if _, err := NumericColumn(t, yName, policy); err != nil {
		return nil, nil, err
	}
	xs, _ := t.Column(xName)
	ys, _ := t.Column(yName)
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	var x, y []float64
	for i := 0; i < n; i++ {
		xv, okx := policy.Parse(xs[i])
		yv, oky := policy.Parse(ys[i])
		if okx && oky {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	return x, y, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
