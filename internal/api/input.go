package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"statgrid/adapters/excel"
	"statgrid/adapters/jsonsrc"
	"statgrid/internal/dataset"
	"statgrid/internal/errors"
)

// InputOptions bound and steer how a request body becomes a table.
type InputOptions struct {
	MaxBytes  int64
	SheetName string
}

const formatJSON = "json"

// ReadTable decodes the request body into a table. The format follows the
// "format" query parameter, then the uploaded file name, then the content
// type; JSON bodies may select a nested array with "data_path".
func ReadTable(w http.ResponseWriter, r *http.Request, in InputOptions) (*dataset.Table, error) {
	if in.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, in.MaxBytes)
	}
	q := r.URL.Query()
	readerCfg := excel.DefaultReaderConfig()
	if sheet := q.Get("sheet"); sheet != "" {
		readerCfg.SheetName = sheet
	} else if in.SheetName != "" {
		readerCfg.SheetName = in.SheetName
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	body := io.Reader(r.Body)
	name := ""
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, tooLarge(err, in, "expected a multipart file field named \"file\"")
		}
		defer file.Close()
		body, name = file, header.Filename
		mediaType = ""
	}

	format := q.Get("format")
	if format == "" {
		format = formatFor(name, mediaType)
	}

	var (
		t   *dataset.Table
		err error
	)
	if format == formatJSON {
		b, readErr := io.ReadAll(body)
		if readErr != nil {
			return nil, tooLarge(readErr, in, "failed to read request body")
		}
		t, err = jsonsrc.Parse(b, q.Get("data_path"))
	} else {
		f, parseErr := excel.ParseFormat(format)
		if parseErr != nil {
			return nil, parseErr
		}
		t, err = excel.Read(body, f, readerCfg)
	}
	if err != nil {
		return nil, tooLarge(err, in, "failed to read table")
	}
	if name != "" {
		t.Name = filepath.Base(name)
	}
	return t, nil
}

func formatFor(filename, mediaType string) string {
	if filename != "" {
		if strings.EqualFold(filepath.Ext(filename), ".json") {
			return formatJSON
		}
		if f := excel.FormatFromPath(filename); f != "" {
			return string(f)
		}
	}
	switch mediaType {
	case "application/json":
		return formatJSON
	case "text/csv", "application/csv":
		return string(excel.FormatCSV)
	case "text/tab-separated-values":
		return string(excel.FormatTSV)
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return string(excel.FormatXLSX)
	}
	return string(excel.FormatText)
}

// tooLarge turns a body-limit failure into PAYLOAD_TOO_LARGE and wraps
// anything else with message.
func tooLarge(err error, in InputOptions, message string) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return errors.PayloadTooLarge(int(in.MaxBytes >> 20))
	}
	if errors.IsAppError(err) {
		return err
	}
	return errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%s: %w", message, err))
}
