// Package jsonsrc turns JSON documents into dataset tables. It accepts a
// column map ({"col": [...]}), an array of row objects, an array of row
// arrays or an array of scalars, optionally nested under a gjson path.
package jsonsrc

import (
	"fmt"

	"github.com/tidwall/gjson"

	"statgrid/adapters/excel"
	"statgrid/internal/dataset"
	"statgrid/internal/errors"
)

// ScalarColumn names the single column built from an array of scalars.
const ScalarColumn = "value"

// Parse builds a table from body. An empty dataPath uses the document root.
func Parse(body []byte, dataPath string) (*dataset.Table, error) {
	root, err := locate(body, dataPath)
	if err != nil {
		return nil, err
	}

	switch {
	case root.IsObject():
		if isColumnMap(root) {
			return columnTable(root)
		}
		c := newCollector()
		c.add(root)
		return c.table()
	case root.IsArray():
		return arrayTable(root)
	}
	return nil, errors.InvalidInput(fmt.Sprintf("data at %q is not an array or object", displayPath(dataPath)))
}

func locate(body []byte, dataPath string) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.InvalidInput("body is not valid JSON")
	}
	if dataPath == "" || dataPath == "." {
		return gjson.ParseBytes(body), nil
	}
	root := gjson.GetBytes(body, dataPath)
	if !root.Exists() {
		return gjson.Result{}, errors.InvalidInput(fmt.Sprintf("data path %q not found", dataPath))
	}
	return root, nil
}

func displayPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}

// isColumnMap reports whether every member of obj is an array.
func isColumnMap(obj gjson.Result) bool {
	members := 0
	arrays := true
	obj.ForEach(func(_, value gjson.Result) bool {
		members++
		arrays = value.IsArray()
		return arrays
	})
	return members > 0 && arrays
}

func columnTable(obj gjson.Result) (*dataset.Table, error) {
	t := &dataset.Table{}
	obj.ForEach(func(key, value gjson.Result) bool {
		items := value.Array()
		values := make([]string, len(items))
		for i, item := range items {
			values[i] = Cell(item)
		}
		t.Columns = append(t.Columns, dataset.Column{Name: key.String(), Values: values})
		return true
	})
	return t, nil
}

func arrayTable(arr gjson.Result) (*dataset.Table, error) {
	items := arr.Array()
	if len(items) == 0 {
		return nil, errors.InvalidInput("data array is empty")
	}

	switch first := firstNonNull(items); {
	case first.IsObject():
		c := newCollector()
		for i, item := range items {
			if item.Type == gjson.Null {
				continue
			}
			if !item.IsObject() {
				return nil, errors.InvalidInput(fmt.Sprintf("element %d is not an object", i))
			}
			c.add(item)
		}
		return c.table()
	case first.IsArray():
		rows := make([][]string, 0, len(items))
		for i, item := range items {
			if !item.IsArray() {
				return nil, errors.InvalidInput(fmt.Sprintf("element %d is not an array", i))
			}
			inner := item.Array()
			row := make([]string, len(inner))
			for j, cell := range inner {
				row[j] = Cell(cell)
			}
			rows = append(rows, row)
		}
		return rowTable(rows)
	}

	values := make([]string, len(items))
	for i, item := range items {
		values[i] = Cell(item)
	}
	return &dataset.Table{Columns: []dataset.Column{{Name: ScalarColumn, Values: values}}}, nil
}

func firstNonNull(items []gjson.Result) gjson.Result {
	for _, item := range items {
		if item.Type != gjson.Null {
			return item
		}
	}
	return gjson.Result{}
}

// rowTable applies the same header detection as pasted grid text.
func rowTable(rows [][]string) (*dataset.Table, error) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	var header []string
	if excel.HasHeader(rows[0]) {
		header, rows = rows[0], rows[1:]
	}
	if len(rows) == 0 || width == 0 {
		return nil, errors.InvalidInput("row arrays hold no data")
	}
	return dataset.NewTable(excel.ColumnNames(header, width), rows), nil
}

// Cell renders a JSON value as a raw grid cell. Numbers keep their literal
// text, null becomes blank and nested values keep their JSON.
func Cell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.String()
	case gjson.Number:
		return v.Raw
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	}
	return v.Raw
}

// collector gathers row objects into columns named in first-appearance order.
type collector struct {
	names []string
	index map[string]int
	rows  []map[string]string
}

func newCollector() *collector {
	return &collector{index: make(map[string]int)}
}

func (c *collector) add(record gjson.Result) {
	row := make(map[string]string)
	record.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if _, ok := c.index[name]; !ok {
			c.index[name] = len(c.names)
			c.names = append(c.names, name)
		}
		row[name] = Cell(value)
		return true
	})
	c.rows = append(c.rows, row)
}

func (c *collector) len() int { return len(c.rows) }

func (c *collector) table() (*dataset.Table, error) {
	if len(c.names) == 0 {
		return nil, errors.InvalidInput("records have no fields")
	}
	t := &dataset.Table{Columns: make([]dataset.Column, len(c.names))}
	for i, name := range c.names {
		values := make([]string, len(c.rows))
		for r, row := range c.rows {
			values[r] = row[name]
		}
		t.Columns[i] = dataset.Column{Name: name, Values: values}
	}
	return t, nil
}
