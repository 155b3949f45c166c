// Package dataset holds the raw columnar input of an analysis: a Table of
// string cells, its numeric/categorical classification and the grouping
// partition the comparative statistics are built from.
package dataset

import (
	"strings"

	"statgrid/adapters/datareadiness/coercer"
	"statgrid/domain/core"
)

// Column is one named column of raw cells.
type Column struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Table is an ordered set of row-aligned columns. Columns may differ in
// length; missing trailing cells read as blank.
type Table struct {
	Name    string   `json:"name,omitempty"`
	Columns []Column `json:"columns"`
}

// NewTable builds a table from a header and row-major data. Short rows are
// padded with blanks.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Columns: make([]Column, len(header))}
	for i, name := range header {
		values := make([]string, len(rows))
		for r, row := range rows {
			if i < len(row) {
				values[r] = row[i]
			}
		}
		t.Columns[i] = Column{Name: name, Values: values}
	}
	return t
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the raw cells of a column.
func (t *Table) Column(name string) ([]string, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, nil
		}
	}
	return nil, core.NewUnknownColumnError(name)
}

// Has reports whether the table contains a column.
func (t *Table) Has(name string) bool {
	_, err := t.Column(name)
	return err == nil
}

// Rows is the length of the longest column.
func (t *Table) Rows() int {
	n := 0
	for _, c := range t.Columns {
		if len(c.Values) > n {
			n = len(c.Values)
		}
	}
	return n
}

// Cell returns the raw value at row i, or "" past the end of the column.
func (c Column) Cell(i int) string {
	if i < 0 || i >= len(c.Values) {
		return ""
	}
	return c.Values[i]
}

// Validate rejects tables the engine cannot analyse at all.
func (t *Table) Validate() error {
	if t == nil || len(t.Columns) == 0 {
		return core.ErrEmptyTable
	}
	return nil
}

// Fingerprint hashes the table contents so repeated analyses of the same data
// can be recognised in logs.
func (t *Table) Fingerprint() core.Hash {
	var b strings.Builder
	for _, c := range t.Columns {
		b.WriteString(c.Name)
		b.WriteByte(0)
		for _, v := range c.Values {
			b.WriteString(v)
			b.WriteByte(0x1f)
		}
		b.WriteByte(0x1e)
	}
	return core.NewHash([]byte(b.String()))
}

// Classification splits the columns of a table by kind, preserving order.
type Classification struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// Classify applies the numeric policy to every column.
func Classify(t *Table, policy coercer.NumericPolicy) Classification {
	var c Classification
	for _, col := range t.Columns {
		if policy.IsNumeric(col.Values) {
			c.Numeric = append(c.Numeric, col.Name)
		} else {
			c.Categorical = append(c.Categorical, col.Name)
		}
	}
	return c
}

// Samples coerces each named column to its numeric sample.
func Samples(t *Table, names []string, policy coercer.NumericPolicy) (map[string][]float64, error) {
	out := make(map[string][]float64, len(names))
	for _, name := range names {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out[name] = policy.Sample(values)
	}
	return out, nil
}
