// Package runs serves the stored solve history over HTTP.
package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/bnbsched/core/runlog"
)

// Querier is the read side of a run store.
type Querier interface {
	Query(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error)
}

// QuerierFunc adapts a function to Querier.
type QuerierFunc func(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error)

func (f QuerierFunc) Query(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error) {
	return f(ctx, q)
}

// NewHandler returns an HTTP handler exposing runs via GET /api/runs.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty. Supported query parameters are start and end (RFC3339),
// instance, feasible (bool) and limit.
func NewHandler(store Querier, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []runlog.RunRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func parseQuery(r *http.Request) (runlog.RunQuery, error) {
	v := r.URL.Query()
	q := runlog.RunQuery{Instance: v.Get("instance")}
	var err error
	if s := v.Get("start"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			return q, err
		}
	}
	if s := v.Get("end"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			return q, err
		}
	}
	if s := v.Get("feasible"); s != "" {
		if q.FeasibleOnly, err = strconv.ParseBool(s); err != nil {
			return q, err
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, err
		}
	}
	return q, nil
}
