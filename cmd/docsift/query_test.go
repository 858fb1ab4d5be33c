package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docsift/docsift"
	"github.com/docsift/docsift/backend"
	"github.com/docsift/docsift/internal/querylog"
)

// stubBackend returns a canned result or error and records the last query.
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

func doQuery(t *testing.T, stub *stubBackend, target string) *httptest.ResponseRecorder {
	t.Helper()
	handler := queryHandler(docsift.New(stub), querylog.NoopWriter{})
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload.Error.Message
}

func TestQueryHandler_Success(t *testing.T) {
	stub := &stubBackend{result: &backend.Result{
		Total: 1,
		Items: []backend.Document{{"domain": "example.com"}},
	}}
	rec := doQuery(t, stub, "/query?query=example")

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var page docsift.SearchResultPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Errorf("got total=%d items=%d, want 1/1", page.Total, len(page.Items))
	}
	if stub.lastQuery.Skip != 0 || stub.lastQuery.Size != 20 {
		t.Errorf("got window skip=%d size=%d, want defaults 0/20", stub.lastQuery.Skip, stub.lastQuery.Size)
	}
}

func TestQueryHandler_EmptyResultPageOne(t *testing.T) {
	stub := &stubBackend{result: &backend.Result{Total: 0, Items: []backend.Document{}}}
	rec := doQuery(t, stub, "/query?query=x&size=20&page=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
}

func TestQueryHandler_MissingQuery(t *testing.T) {
	rec := doQuery(t, &stubBackend{result: &backend.Result{}}, "/query?size=5")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec.Body.Bytes()); msg != "Query required" {
		t.Errorf("got message %q", msg)
	}
}

func TestQueryHandler_ClientErrors(t *testing.T) {
	tests := []struct {
		target  string
		wantMsg string
	}{
		{"/query?query=x&size=0", "Invalid page size 0 provided"},
		{"/query?query=x&page=0", "Invalid page number 0"},
		{"/query?query=x&size=abc", "Input paramaters are of the wrong type"},
		{"/query?query=x&page=abc", "Input paramaters are of the wrong type"},
		{"/query?query=x&size=20&page=2", "Page number 2 is too high"},
	}
	for _, tt := range tests {
		stub := &stubBackend{result: &backend.Result{Total: 0}}
		rec := doQuery(t, stub, tt.target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want 400", tt.target, rec.Code)
			continue
		}
		if msg := errorMessage(t, rec.Body.Bytes()); msg != tt.wantMsg {
			t.Errorf("%s: got message %q, want %q", tt.target, msg, tt.wantMsg)
		}
	}
}

func TestQueryHandler_BackendUnreachable(t *testing.T) {
	stub := &stubBackend{err: &backend.ConnectionError{Err: context.DeadlineExceeded}}
	rec := doQuery(t, stub, "/query?query=x")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502", rec.Code)
	}
	if msg := errorMessage(t, rec.Body.Bytes()); msg != "Search failed to connect" {
		t.Errorf("got message %q", msg)
	}
}

func TestQueryHandler_UniqueForwarded(t *testing.T) {
	stub := &stubBackend{result: &backend.Result{Total: 1, Items: []backend.Document{{}}}}

	doQuery(t, stub, "/query?query=x&unique=TRUE")
	if !stub.lastQuery.Unique {
		t.Error("unique=TRUE should reach the backend as true")
	}

	doQuery(t, stub, "/query?query=x&unique=1")
	if stub.lastQuery.Unique {
		t.Error("unique=1 should reach the backend as false")
	}
}
