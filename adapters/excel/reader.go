package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"statgrid/adapters/datareadiness/coercer"
	"statgrid/internal/dataset"
	"statgrid/internal/errors"
)

// Format identifies how raw input is laid out.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
	// FormatText is pasted grid text; the delimiter is sniffed from the first line.
	FormatText Format = "text"
)

// FormatFromPath picks the format from a file extension. Unknown extensions
// return "".
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".txt":
		return FormatText
	}
	return ""
}

// ParseFormat accepts the format names used on the command line and in the API.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatTSV, FormatXLSX, FormatText:
		return f, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unsupported format %q (want csv, tsv, xlsx or text)", s))
}

// DataReader reads a CSV, TSV, XLSX or text file into a dataset.Table
type DataReader struct {
	filePath string
	format   Format
	cfg      ReaderConfig
}

// NewDataReader creates a reader whose format follows the file extension
func NewDataReader(filePath string, cfg ReaderConfig) *DataReader {
	return &DataReader{filePath: filePath, format: FormatFromPath(filePath), cfg: cfg}
}

// WithFormat overrides the extension-derived format.
func (r *DataReader) WithFormat(f Format) *DataReader {
	r.format = f
	return r
}

// ReadTable reads the whole file. The table is named after the file.
func (r *DataReader) ReadTable() (*dataset.Table, error) {
	log := r.cfg.logger()
	log.Debug("[DataReader] Starting to read %s file: %s", r.format, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("input file %s", r.filePath))
	}
	if r.format == "" {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %q", filepath.Ext(r.filePath)))
	}

	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input file")
	}
	defer f.Close()

	t, err := Read(f, r.format, r.cfg)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(r.filePath)
	return t, nil
}

// Read parses a stream in the given format.
func Read(rd io.Reader, format Format, cfg ReaderConfig) (*dataset.Table, error) {
	switch format {
	case FormatXLSX:
		return readWorkbook(rd, cfg)
	case FormatCSV:
		return readDelimited(rd, ',', cfg)
	case FormatTSV:
		return readDelimited(rd, '\t', cfg)
	case FormatText:
		b, err := io.ReadAll(rd)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read text input")
		}
		return ParseText(string(b), cfg)
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unsupported format %q", format))
}

// ParseText parses grid text pasted from a spreadsheet. Cells are separated by
// tabs when the first non-blank line contains a tab, otherwise by commas.
func ParseText(text string, cfg ReaderConfig) (*dataset.Table, error) {
	return readDelimited(strings.NewReader(text), SniffDelimiter(text), cfg)
}

// SniffDelimiter returns '\t' when the first non-blank line holds a tab.
func SniffDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "\t") {
			return '\t'
		}
		break
	}
	return ','
}

func readWorkbook(rd io.Reader, cfg ReaderConfig) (*dataset.Table, error) {
	log := cfg.logger()
	startTime := time.Now()
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to open Excel workbook"))
	}
	defer f.Close()
	log.Debug("[DataReader] Excel workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := cfg.sheet()
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, errors.InvalidInput(fmt.Sprintf("sheet %q not found (available: %s)",
			sheet, strings.Join(f.GetSheetList(), ", ")))
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to read sheet %s", sheet))
	}
	log.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return buildTable(rows, cfg)
}

func readDelimited(rd io.Reader, comma rune, cfg ReaderConfig) (*dataset.Table, error) {
	reader := csv.NewReader(rd)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to read delimited data"))
	}
	cfg.logger().Debug("[DataReader] delimited input read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return buildTable(rows, cfg)
}

// buildTable trims cells, drops blank rows and splits off the header row
// when there is one.
func buildTable(rows [][]string, cfg ReaderConfig) (*dataset.Table, error) {
	rows = trimRows(rows)
	if len(rows) == 0 {
		return nil, errors.InvalidInput("input contains no data")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var header []string
	data := rows
	if HasHeader(rows[0]) {
		header, data = rows[0], rows[1:]
	}
	if len(data) == 0 {
		return nil, errors.InvalidInput("input must have at least one data row below the header")
	}

	names := ColumnNames(header, width)
	cfg.logger().Debug("[DataReader] table built (%d columns, %d rows, header=%t)", len(names), len(data), header != nil)
	return dataset.NewTable(names, data), nil
}

func trimRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		blank := true
		for i, cell := range row {
			row[i] = strings.TrimSpace(cell)
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

// HasHeader reports whether a first row names its columns: it does when any
// non-blank cell is not a number.
func HasHeader(first []string) bool {
	policy := coercer.DefaultNumericPolicy()
	for _, cell := range first {
		if coercer.IsBlank(cell) {
			continue
		}
		if _, ok := policy.Parse(cell); !ok {
			return true
		}
	}
	return false
}

// ColumnNames completes a header to width columns. Missing or empty names
// become "Col N" (1-based) and repeated names get a numeric suffix.
func ColumnNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range names {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Col %d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		names[i] = name
	}
	return names
}
