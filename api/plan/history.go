package plan

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/energyadvisor/core/events"
	"github.com/kilianp07/energyadvisor/core/planlog"
)

// NewHistoryHandler returns past planning runs via GET /api/plan/history.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewHistoryHandler(store planlog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		params := r.URL.Query()
		q := planlog.Query{
			ActivityID: params.Get("activity_id"),
			Trigger:    events.Trigger(params.Get("trigger")),
			FailedOnly: params.Get("failed") == "true",
		}
		if s := params.Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := params.Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		if s := params.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			q.Limit = n
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []planlog.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
