package jsonsrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"statgrid/internal"
	"statgrid/internal/dataset"
	"statgrid/internal/errors"
)

// Pagination styles understood by the Fetcher.
const (
	PaginationNone   = "none"
	PaginationCursor = "cursor"
	PaginationPage   = "page"
)

// SourceConfig describes a remote JSON endpoint
type SourceConfig struct {
	URL            string            `json:"url"`
	DataPath       string            `json:"data_path"`
	Headers        map[string]string `json:"headers,omitempty"`
	AuthMethod     string            `json:"auth_method,omitempty"` // bearer, api_key
	AuthToken      string            `json:"-"`
	PaginationType string            `json:"pagination_type"`
	MaxPages       int               `json:"max_pages"`
	Timeout        time.Duration     `json:"timeout"`
}

// DefaultSourceConfig fetches a single page with a 30s timeout
func DefaultSourceConfig(rawURL string) SourceConfig {
	return SourceConfig{
		URL:            rawURL,
		PaginationType: PaginationNone,
		MaxPages:       1,
		Timeout:        30 * time.Second,
	}
}

// Fetcher pulls a table from a REST endpoint that returns JSON
type Fetcher struct {
	config     SourceConfig
	httpClient *http.Client
	logger     *internal.Logger
}

// NewFetcher creates a fetcher for the endpoint
func NewFetcher(config SourceConfig, logger *internal.Logger) *Fetcher {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.MaxPages <= 0 {
		config.MaxPages = 1
	}
	return &Fetcher{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Fetch retrieves every page and merges the row objects into one table. A
// column-map response is returned as is and never paginated.
func (f *Fetcher) Fetch(ctx context.Context) (*dataset.Table, error) {
	startTime := time.Now()
	c := newCollector()
	cursor := ""

	for page := 0; page < f.config.MaxPages; page++ {
		body, err := f.get(ctx, cursor, page)
		if err != nil {
			return nil, err
		}

		root, err := locate(body, f.config.DataPath)
		if err != nil {
			return nil, err
		}
		if page == 0 && (!root.IsArray() || !firstNonNull(root.Array()).IsObject()) {
			t, err := Parse(body, f.config.DataPath)
			if err != nil {
				return nil, err
			}
			f.logger.Info("[Fetcher] %s fetched in %s (%d columns)", f.config.URL, time.Since(startTime), len(t.Columns))
			return t, nil
		}

		n := 0
		for _, item := range root.Array() {
			if item.IsObject() {
				c.add(item)
				n++
			}
		}
		f.logger.Debug("[Fetcher] page %d: %d records", page+1, n)

		if !f.hasMorePages(n) {
			break
		}
		if f.config.PaginationType == PaginationCursor {
			if cursor = extractNextCursor(body); cursor == "" {
				break
			}
		}
	}

	f.logger.Info("[Fetcher] %s fetched in %s (%d records)", f.config.URL, time.Since(startTime), c.len())
	return c.table()
}

func (f *Fetcher) hasMorePages(records int) bool {
	switch f.config.PaginationType {
	case PaginationCursor, PaginationPage:
		return records > 0
	}
	return false
}

func (f *Fetcher) get(ctx context.Context, cursor string, page int) ([]byte, error) {
	target, err := f.buildURL(cursor, page)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range f.config.Headers {
		req.Header.Set(k, v)
	}
	switch f.config.AuthMethod {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+f.config.AuthToken)
	case "api_key":
		req.Header.Set("X-API-Key", f.config.AuthToken)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.InvalidInput(fmt.Sprintf("source returned status %d", resp.StatusCode))
	}
	return body, nil
}

func (f *Fetcher) buildURL(cursor string, page int) (string, error) {
	u, err := url.Parse(f.config.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.InvalidInput(fmt.Sprintf("invalid source URL %q", f.config.URL))
	}
	q := u.Query()
	switch f.config.PaginationType {
	case PaginationPage:
		q.Set("page", strconv.Itoa(page+1))
	case PaginationCursor:
		if cursor != "" {
			q.Set("cursor", cursor)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// extractNextCursor looks for the common cursor field names
func extractNextCursor(body []byte) string {
	for _, field := range []string{"next_cursor", "cursor", "next", "continuation_token"} {
		if cursor := gjson.GetBytes(body, field); cursor.Exists() && cursor.String() != "" {
			return cursor.String()
		}
	}
	return ""
}
