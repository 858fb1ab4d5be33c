package docsift

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/docsift/docsift/backend"
)

// stubBackend is a test double for backend.Backend. It records the last
// query and returns a canned result or error.
type stubBackend struct {
	lastQuery backend.Query
	result    *backend.Result
	err       error
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Search(_ context.Context, q backend.Query) (*backend.Result, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestParseSearchQuery_Defaults(t *testing.T) {
	q, err := ParseSearchQuery(url.Values{"query": {"example"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "example" {
		t.Errorf("got text %q, want example", q.Text)
	}
	if q.PageSize != 20 {
		t.Errorf("got size %d, want 20", q.PageSize)
	}
	if q.PageNumber != 1 {
		t.Errorf("got page %d, want 1", q.PageNumber)
	}
	if q.Unique {
		t.Error("unique should default to false")
	}
}

func TestParseSearchQuery_NonInteger(t *testing.T) {
	for _, param := range []string{"size", "page"} {
		values := url.Values{"query": {"x"}, param: {"abc"}}
		_, err := ParseSearchQuery(values)
		var ce *ClientError
		if !errors.As(err, &ce) {
			t.Fatalf("%s=abc: got %v, want ClientError", param, err)
		}
		if ce.Message != "Input paramaters are of the wrong type" {
			t.Errorf("got message %q", ce.Message)
		}
	}
}

func TestParseSearchQuery_Unique(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"false", false},
		{"", false},
		{"1", false},
		{"yes", false},
	}
	for _, tt := range tests {
		q, err := ParseSearchQuery(url.Values{"query": {"x"}, "unique": {tt.raw}})
		if err != nil {
			t.Fatalf("unique=%q: unexpected error: %v", tt.raw, err)
		}
		if q.Unique != tt.want {
			t.Errorf("unique=%q: got %v, want %v", tt.raw, q.Unique, tt.want)
		}
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	gw := New(&stubBackend{result: &backend.Result{}})
	_, err := gw.Search(context.Background(), SearchQuery{PageSize: 20, PageNumber: 1})
	assertClientError(t, err, "Query required")
}

func TestSearch_InvalidPagination(t *testing.T) {
	gw := New(&stubBackend{result: &backend.Result{}})

	_, err := gw.Search(context.Background(), SearchQuery{Text: "x", PageSize: 0, PageNumber: 1})
	assertClientError(t, err, "Invalid page size 0 provided")

	_, err = gw.Search(context.Background(), SearchQuery{Text: "x", PageSize: 20, PageNumber: 0})
	assertClientError(t, err, "Invalid page number 0")
}

func TestSearch_SkipComputation(t *testing.T) {
	stub := &stubBackend{result: &backend.Result{Total: 100}}
	gw := New(stub)

	tests := []struct {
		size, page, wantSkip int
	}{
		{20, 1, 0},
		{20, 2, 20},
		{7, 5, 28},
		{1, 100, 99},
	}
	for _, tt := range tests {
		_, err := gw.Search(context.Background(), SearchQuery{Text: "x", PageSize: tt.size, PageNumber: tt.page})
		if err != nil {
			t.Fatalf("size=%d page=%d: unexpected error: %v", tt.size, tt.page, err)
		}
		if stub.lastQuery.Skip != tt.wantSkip {
			t.Errorf("size=%d page=%d: got skip %d, want %d", tt.size, tt.page, stub.lastQuery.Skip, tt.wantSkip)
		}
		if stub.lastQuery.Size != tt.size {
			t.Errorf("size=%d page=%d: got size %d", tt.size, tt.page, stub.lastQuery.Size)
		}
	}
}

func TestSearch_PageOneAlwaysValid(t *testing.T) {
	gw := New(&stubBackend{result: &backend.Result{Total: 0, Items: []backend.Document{}}})
	page, err := gw.Search(context.Background(), SearchQuery{Text: "x", PageSize: 20, PageNumber: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("got total %d, want 0", page.Total)
	}
	if len(page.Items) != 0 {
		t.Errorf("got %d items, want 0", len(page.Items))
	}
}

func TestSearch_PageBound(t *testing.T) {
	tests := []struct {
		total   int64
		size    int
		page    int
		wantErr bool
	}{
		{0, 20, 2, true},
		{41, 20, 3, false}, // last page, partially filled
		{41, 20, 4, true},
		{40, 20, 2, false},
		{40, 20, 3, true},
		{1, 1, 1, false},
		{1, 1, 2, true},
	}
	for _, tt := range tests {
		gw := New(&stubBackend{result: &backend.Result{Total: tt.total}})
		_, err := gw.Search(context.Background(), SearchQuery{Text: "x", PageSize: tt.size, PageNumber: tt.page})
		if tt.wantErr {
			assertClientError(t, err, fmt.Sprintf("Page number %d is too high", tt.page))
		} else if err != nil {
			t.Errorf("total=%d size=%d page=%d: unexpected error: %v", tt.total, tt.size, tt.page, err)
		}
	}
}

func TestSearch_ConnectionFailure(t *testing.T) {
	gw := New(&stubBackend{err: &backend.ConnectionError{Err: errors.New("dial tcp: refused")}})
	_, err := gw.Search(context.Background(), SearchQuery{Text: "x", PageSize: 20, PageNumber: 1})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want ServerError", err)
	}
	if se.Message != "Search failed to connect" {
		t.Errorf("got message %q", se.Message)
	}
	if se.Unwrap() == nil {
		t.Error("expected wrapped backend error")
	}
}

func TestSearch_QueryRejected(t *testing.T) {
	gw := New(&stubBackend{err: &backend.QueryError{Err: errors.New("syntax error")}})
	_, err := gw.Search(context.Background(), SearchQuery{Text: "(", PageSize: 20, PageNumber: 1})
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ClientError", err)
	}
}

func TestSearch_UnclassifiedBackendError(t *testing.T) {
	gw := New(&stubBackend{err: errors.New("something odd")})
	_, err := gw.Search(context.Background(), SearchQuery{Text: "x", PageSize: 20, PageNumber: 1})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want ServerError", err)
	}
	if se.Message != "Search failed" {
		t.Errorf("got message %q", se.Message)
	}
}

func assertClientError(t *testing.T, err error, wantMsg string) {
	t.Helper()
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ClientError", err)
	}
	if ce.Message != wantMsg {
		t.Errorf("got message %q, want %q", ce.Message, wantMsg)
	}
}
