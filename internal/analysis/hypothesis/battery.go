package hypothesis

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"statgrid/domain/analysis"
	"statgrid/internal/dataset"
)

// Input is everything the standard test battery needs from one table.
type Input struct {
	Numeric []string             // numeric column names, in table order
	Samples map[string][]float64 // numeric column -> sample

	// Partition groups the numeric columns by a categorical column. Nil when
	// the table has no categorical column; the comparative tests are skipped.
	Partition *dataset.GroupPartition
	// Categories are the raw cells of the grouping column, for chi-squared.
	Categories []string

	Mu0 float64
}

// Run executes the standard battery in a fixed order:
//
//  1. a one-sample t-test against Mu0 for every numeric column;
//  2. per numeric column, over the groups with at least two values, Welch's
//     t-test when exactly two groups remain and ANOVA when two or more do;
//  3. chi-squared goodness of fit over the grouping column's label counts.
//
// Tests whose statistic is undefined are omitted.
func Run(in Input) []analysis.HypothesisResult {
	results := []analysis.HypothesisResult{}

	for _, name := range in.Numeric {
		if res := OneSample(in.Samples[name], in.Mu0); res != nil {
			res.Column = name
			results = append(results, *res)
		}
	}

	p := in.Partition
	if p == nil || len(in.Numeric) == 0 {
		return results
	}

	for _, name := range in.Numeric {
		labels, groups := p.Groups(name, 2)
		means := groupMeans(labels, groups)
		column := fmt.Sprintf("%s by %s", name, p.GroupBy)

		if len(groups) == 2 {
			if res := Welch(groups[0], groups[1]); res != nil {
				res.Column = column
				res.Variable = name
				res.GroupBy = p.GroupBy
				res.Groups = labels
				res.GroupMeans = means
				results = append(results, *res)
			}
		}
		if len(groups) >= 2 {
			if res := ANOVA(groups); res != nil {
				res.Column = column
				res.Variable = name
				res.GroupBy = p.GroupBy
				res.Groups = labels
				res.GroupMeans = means
				results = append(results, *res)
			}
		}
	}

	_, observed := dataset.Frequencies(in.Categories)
	if res := ChiSquaredGOF(observed); res != nil {
		res.Column = p.GroupBy + " (frequencies)"
		res.Variable = p.GroupBy
		results = append(results, *res)
	}
	return results
}

func groupMeans(labels []string, groups [][]float64) map[string]float64 {
	means := make(map[string]float64, len(labels))
	for i, label := range labels {
		m, err := stats.Mean(groups[i])
		if err == nil {
			means[label] = m
		}
	}
	return means
}
