// Package backend defines the Backend interface and shared data types
// used by all document-search backend implementations.
//
// The Backend interface must be implemented by any search engine that
// integrates with the gateway. Core types: Query, Result, Document.
//
// Failures are classified with ConnectionError (backend unreachable) and
// QueryError (the backend rejected the query itself); callers use errors.As
// to tell them apart.
package backend

import (
	"context"
	"fmt"
)

// Backend defines the interface that all search backends must implement.
type Backend interface {
	Name() string
	Search(ctx context.Context, q Query) (*Result, error)
}

// Query is a single search call against a backend. Skip and Size carry the
// pagination window already computed by the gateway; Unique asks the backend
// to collapse duplicate documents before paging.
type Query struct {
	Text   string
	Skip   int
	Size   int
	Unique bool
}

// Document is a single search hit. Backends return whatever fields they
// store; the gateway treats documents as opaque.
type Document map[string]interface{}

// Result holds one page of search hits along with the total number of
// documents matching the query across all pages.
type Result struct {
	Total int64      `json:"total"`
	Items []Document `json:"results"`
}

// ConnectionError signals that the backend could not be reached (dial,
// ping, or I/O failure). The gateway maps it to an infrastructure fault.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("backend connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError signals that the backend rejected the query itself (e.g.
// malformed full-text syntax). The gateway maps it to a client fault.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("backend rejected query: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
