package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"statgrid/adapters/excel"
	"statgrid/adapters/jsonsrc"
	"statgrid/internal/dataset"
	"statgrid/internal/errors"
)

const formatJSON = "json"

// source describes where a command reads its table from: a file argument,
// stdin ("-" or no argument) or a remote JSON endpoint.
type source struct {
	url        string
	dataPath   string
	format     string
	sheet      string
	headers    []string
	authMethod string
	authToken  string
	pagination string
	maxPages   int
	timeout    time.Duration
}

func (s *source) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.url, "url", "", "Fetch JSON rows from this URL instead of reading a file")
	f.StringVar(&s.dataPath, "data-path", "", "gjson path of the row array inside a JSON document")
	f.StringVar(&s.format, "format", "", "Input format: csv, tsv, xlsx, text or json (default from extension)")
	f.StringVar(&s.sheet, "sheet", "", "Worksheet to read from an XLSX file (default SHEET_NAME)")
	f.StringArrayVar(&s.headers, "header", nil, "Extra request header for --url, as 'Name: value' (repeatable)")
	f.StringVar(&s.authMethod, "auth", "", "Authentication for --url: bearer or api_key")
	f.StringVar(&s.authToken, "token", os.Getenv("STATGRID_TOKEN"), "Token for --auth (default STATGRID_TOKEN)")
	f.StringVar(&s.pagination, "pagination", jsonsrc.PaginationNone, "Pagination for --url: none, cursor or page")
	f.IntVar(&s.maxPages, "max-pages", 10, "Maximum pages to fetch with --pagination")
	f.DurationVar(&s.timeout, "timeout", 30*time.Second, "HTTP timeout for --url")
}

func (c *cli) readerConfig(s *source) excel.ReaderConfig {
	cfg := excel.DefaultReaderConfig()
	cfg.Logger = c.logger
	cfg.SheetName = c.cfg.Input.SheetName
	if s.sheet != "" {
		cfg.SheetName = s.sheet
	}
	return cfg
}

// load reads the table named by args and the source flags.
func (c *cli) load(ctx context.Context, cmd *cobra.Command, s *source, args []string) (*dataset.Table, error) {
	if s.url != "" {
		if len(args) > 0 {
			return nil, errors.InvalidInput("pass either a file or --url, not both")
		}
		return c.fetch(ctx, s)
	}

	if len(args) == 0 || args[0] == "-" {
		return c.readStream(cmd.InOrStdin(), s)
	}

	path := args[0]
	if strings.EqualFold(s.format, formatJSON) || (s.format == "" && strings.EqualFold(filepath.Ext(path), ".json")) {
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NotFound(fmt.Sprintf("input file %s", path))
			}
			return nil, errors.Wrap(err, "failed to read input file")
		}
		t, err := jsonsrc.Parse(b, s.dataPath)
		if err != nil {
			return nil, err
		}
		t.Name = filepath.Base(path)
		return t, nil
	}

	r := excel.NewDataReader(path, c.readerConfig(s))
	if s.format != "" {
		f, err := excel.ParseFormat(s.format)
		if err != nil {
			return nil, err
		}
		r = r.WithFormat(f)
	}
	return r.ReadTable()
}

func (c *cli) readStream(in io.Reader, s *source) (*dataset.Table, error) {
	if strings.EqualFold(s.format, formatJSON) {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
		return jsonsrc.Parse(b, s.dataPath)
	}
	format := excel.FormatText
	if s.format != "" {
		f, err := excel.ParseFormat(s.format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	return excel.Read(in, format, c.readerConfig(s))
}

func (c *cli) fetch(ctx context.Context, s *source) (*dataset.Table, error) {
	cfg := jsonsrc.DefaultSourceConfig(s.url)
	cfg.DataPath = s.dataPath
	cfg.AuthMethod = s.authMethod
	cfg.AuthToken = s.authToken
	cfg.PaginationType = s.pagination
	cfg.Timeout = s.timeout
	if s.pagination != jsonsrc.PaginationNone {
		cfg.MaxPages = s.maxPages
	}
	if len(s.headers) > 0 {
		cfg.Headers = make(map[string]string, len(s.headers))
		for _, h := range s.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok {
				return nil, errors.InvalidInput(fmt.Sprintf("header %q must look like 'Name: value'", h))
			}
			cfg.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	return jsonsrc.NewFetcher(cfg, c.logger).Fetch(ctx)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
