// Package docsift provides a pluggable gateway in front of a document
// search backend.
//
// The Gateway type is the main entry point: create one with New around a
// backend.Backend, parse raw request parameters with ParseSearchQuery, and
// run searches with Search. Route-group plugins are collected separately by
// the plugin package and mounted by the HTTP layer.
//
// The server is configured via [Config], loaded from a YAML or JSON file
// using [LoadConfig].
package docsift

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/docsift/docsift/backend"
	"github.com/docsift/docsift/internal/logging"
	"github.com/docsift/docsift/internal/metrics"
)

// Pagination defaults applied by ParseSearchQuery when the raw parameters
// are absent.
const (
	DefaultPageSize   = 20
	DefaultPageNumber = 1
)

// SearchQuery is a validated, typed search request.
type SearchQuery struct {
	Text       string
	PageSize   int
	PageNumber int
	Unique     bool
}

// SearchResultPage is one page of search hits plus the backend-reported
// total across all pages.
type SearchResultPage struct {
	Total int64              `json:"total"`
	Items []backend.Document `json:"results"`
}

// Gateway validates search requests, computes the pagination window, and
// dispatches to the configured backend. It holds no mutable state and is
// safe for concurrent use; callers needing bounded latency should wrap the
// context with a deadline, since the backend call has no implicit timeout.
type Gateway struct {
	backend backend.Backend
}

// New creates a Gateway over the given search backend.
func New(b backend.Backend) *Gateway {
	return &Gateway{backend: b}
}

// ParseSearchQuery builds a SearchQuery from raw URL query parameters.
//
// Parameters: "query" (search text, may be absent here; Search rejects
// empty text), "size" (default 20), "page" (default 1), "unique" (default
// false). A size or page value that does not parse as an integer yields a
// *ClientError rather than a bare strconv error. The unique flag is true
// only for the literal string "true", compared case-insensitively; any
// other value, including empty or absent, is false.
func ParseSearchQuery(values url.Values) (SearchQuery, error) {
	q := SearchQuery{
		Text:       values.Get("query"),
		PageSize:   DefaultPageSize,
		PageNumber: DefaultPageNumber,
	}

	if raw := values.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return SearchQuery{}, &ClientError{Message: "Input paramaters are of the wrong type"}
		}
		q.PageSize = size
	}
	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return SearchQuery{}, &ClientError{Message: "Input paramaters are of the wrong type"}
		}
		q.PageNumber = page
	}
	q.Unique = strings.EqualFold(values.Get("unique"), "true")

	return q, nil
}

// Search validates q, queries the backend, and returns the requested page.
//
// Failures are typed: *ClientError for missing text, out-of-range
// pagination, a page number past the last page, or a query the backend
// rejected; *ServerError when the backend is unreachable. Backend errors
// are never swallowed, only reclassified. Page 1 is always valid, even for
// an empty result set.
func (g *Gateway) Search(ctx context.Context, q SearchQuery) (*SearchResultPage, error) {
	start := time.Now()
	page, err := g.search(ctx, q)
	status := "success"
	if err != nil {
		var ce *ClientError
		if errors.As(err, &ce) {
			status = "client_error"
		} else {
			status = "server_error"
		}
	}
	metrics.SearchesTotal.WithLabelValues(g.backend.Name(), status).Inc()
	metrics.SearchDuration.WithLabelValues(g.backend.Name()).Observe(time.Since(start).Seconds())
	return page, err
}

func (g *Gateway) search(ctx context.Context, q SearchQuery) (*SearchResultPage, error) {
	if q.Text == "" {
		return nil, &ClientError{Message: "Query required"}
	}
	if q.PageSize < 1 {
		return nil, &ClientError{Message: fmt.Sprintf("Invalid page size %d provided", q.PageSize)}
	}
	if q.PageNumber < 1 {
		return nil, &ClientError{Message: fmt.Sprintf("Invalid page number %d", q.PageNumber)}
	}

	skip := (q.PageNumber - 1) * q.PageSize
	result, err := g.backend.Search(ctx, backend.Query{
		Text:   q.Text,
		Skip:   skip,
		Size:   q.PageSize,
		Unique: q.Unique,
	})
	if err != nil {
		return nil, g.classify(ctx, err)
	}

	// Post-hoc page bound: the backend reports the total, so the last valid
	// page is only known after the call. Page 1 stays valid at total=0.
	if q.PageNumber > 1 && int64(q.PageNumber) > lastPage(result.Total, q.PageSize) {
		return nil, &ClientError{Message: fmt.Sprintf("Page number %d is too high", q.PageNumber)}
	}

	return &SearchResultPage{Total: result.Total, Items: result.Items}, nil
}

// classify maps backend failures onto the gateway error taxonomy. A
// connectivity failure is an infrastructure fault; a rejected query is the
// caller's fault; anything the backend did not classify itself is treated
// as a server-side fault.
func (g *Gateway) classify(ctx context.Context, err error) error {
	var connErr *backend.ConnectionError
	if errors.As(err, &connErr) {
		metrics.BackendErrors.WithLabelValues(g.backend.Name(), "connection").Inc()
		logging.FromContext(ctx).Error("search backend unreachable", "backend", g.backend.Name(), "error", err.Error())
		return &ServerError{Message: "Search failed to connect", Err: err}
	}
	var queryErr *backend.QueryError
	if errors.As(err, &queryErr) {
		metrics.BackendErrors.WithLabelValues(g.backend.Name(), "query").Inc()
		return &ClientError{Message: fmt.Sprintf("Invalid query: %v", queryErr.Err)}
	}
	logging.FromContext(ctx).Error("search backend failed", "backend", g.backend.Name(), "error", err.Error())
	return &ServerError{Message: "Search failed", Err: err}
}

// lastPage returns ceil(total/pageSize), the highest valid page number for
// the given total.
func lastPage(total int64, pageSize int) int64 {
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
