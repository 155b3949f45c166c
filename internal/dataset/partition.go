package dataset

import (
	"strings"

	"statgrid/adapters/datareadiness/coercer"
)

// GroupPartition splits numeric columns by the labels of a categorical column.
// Labels keep their first-appearance order.
type GroupPartition struct {
	GroupBy string                          `json:"group_by"`
	Labels  []string                        `json:"labels"`
	Samples map[string]map[string][]float64 `json:"samples"` // label -> column -> sample
}

// Partition groups the numeric columns of t by the raw values of groupBy.
//
// Rows are aligned by index. A row whose label is blank is skipped entirely;
// a row whose numeric cell is blank or unparseable is skipped for that column
// only. Labels are trimmed.
func Partition(t *Table, groupBy string, numeric []string, policy coercer.NumericPolicy) (*GroupPartition, error) {
	labels, err := t.Column(groupBy)
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(numeric))
	for i, name := range numeric {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Name: name, Values: values}
	}

	p := &GroupPartition{GroupBy: groupBy, Samples: make(map[string]map[string][]float64)}
	for row, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		group, seen := p.Samples[label]
		if !seen {
			group = make(map[string][]float64, len(cols))
			for _, c := range cols {
				group[c.Name] = []float64{}
			}
			p.Samples[label] = group
			p.Labels = append(p.Labels, label)
		}
		for _, c := range cols {
			if v, ok := policy.Parse(c.Cell(row)); ok {
				group[c.Name] = append(group[c.Name], v)
			}
		}
	}
	return p, nil
}

// Groups returns the labels and samples for column whose samples hold at
// least min values, in label order.
func (p *GroupPartition) Groups(column string, min int) ([]string, [][]float64) {
	var labels []string
	var samples [][]float64
	for _, label := range p.Labels {
		s := p.Samples[label][column]
		if len(s) >= min {
			labels = append(labels, label)
			samples = append(samples, s)
		}
	}
	return labels, samples
}

// Frequencies counts how often each label occurs, in label order.
// Blank labels are not counted.
func Frequencies(values []string) ([]string, []float64) {
	var labels []string
	counts := make(map[string]float64)
	for _, raw := range values {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		if _, ok := counts[label]; !ok {
			labels = append(labels, label)
		}
		counts[label]++
	}
	observed := make([]float64, len(labels))
	for i, l := range labels {
		observed[i] = counts[l]
	}
	return labels, observed
}
