package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/docsift/docsift"
	"github.com/docsift/docsift/internal/logging"
	"github.com/docsift/docsift/internal/querylog"
)

// queryHandler serves GET /query. Parameter parsing and validation live in
// the gateway; this handler only maps the typed errors onto HTTP statuses
// and records the request in the query log.
func queryHandler(gw *docsift.Gateway, logWriter querylog.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		q, err := docsift.ParseSearchQuery(r.URL.Query())
		if err != nil {
			writeQueryError(w, r, err)
			return
		}

		page, err := gw.Search(r.Context(), q)

		entry := querylog.Entry{
			TraceID:    logging.TraceIDFromContext(r.Context()),
			Query:      q.Text,
			PageSize:   q.PageSize,
			PageNumber: q.PageNumber,
			Unique:     q.Unique,
			Status:     "success",
			DurationMS: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Status = "error"
			entry.ErrorMessage = err.Error()
		} else {
			entry.Total = page.Total
		}
		if werr := logWriter.Write(r.Context(), entry); werr != nil {
			logging.FromContext(r.Context()).Warn("query log write failed", "error", werr.Error())
		}

		if err != nil {
			writeQueryError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page)
	}
}

// writeQueryError maps gateway errors onto HTTP statuses: client faults are
// 400, backend faults are 502. Anything untyped is treated as a server
// fault so a misclassified error can never leak as a success.
func writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	var ce *docsift.ClientError
	if errors.As(err, &ce) {
		status = http.StatusBadRequest
	} else {
		logging.FromContext(r.Context()).Error("search failed", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
		},
	})
}
