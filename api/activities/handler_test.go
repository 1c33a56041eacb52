package activities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kilianp07/energyadvisor/core/activity"
	"github.com/kilianp07/energyadvisor/infra/logger"
)

func newMux(t *testing.T) (*http.ServeMux, *activity.Manager) {
	t.Helper()
	m, err := activity.NewManager(context.Background(), activity.NewMemoryStore(), logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle("GET /api/activities", NewListHandler(m))
	mux.Handle("POST /api/activities", NewCreateHandler(m))
	mux.Handle("PUT /api/activities/{id}", NewUpdateHandler(m))
	mux.Handle("DELETE /api/activities/{id}", NewDeleteHandler(m))
	return mux, m
}

func do(mux http.Handler, method, url, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(method, url, strings.NewReader(body)))
	return rr
}

func TestActivityLifecycle(t *testing.T) {
	mux, m := newMux(t)

	rr := do(mux, "POST", "/api/activities", `{"id":"washer","name":"Washer","duration_minutes":90,"earliest_start":"08:00","priority":1}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rr.Code, rr.Body.String())
	}
	if rr := do(mux, "POST", "/api/activities", `{"id":"washer","duration_minutes":30}`); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate status %d", rr.Code)
	}
	if rr := do(mux, "POST", "/api/activities", `{"id":"x","duration_minutes":0}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid status %d", rr.Code)
	}
	if rr := do(mux, "POST", "/api/activities", `{"id":"x","duration":10}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status %d", rr.Code)
	}

	rr = do(mux, "PUT", "/api/activities/washer", `{"duration_minutes":120,"latest_end":"22:00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", rr.Code, rr.Body.String())
	}
	got, err := m.Get("washer")
	if err != nil || got.DurationMinutes != 120 || got.LatestEnd == nil || got.LatestEnd.Hour != 22 {
		t.Fatalf("update not applied: %+v %v", got, err)
	}
	if rr := do(mux, "PUT", "/api/activities/missing", `{"duration_minutes":10}`); rr.Code != http.StatusNotFound {
		t.Fatalf("missing update status %d", rr.Code)
	}

	rr = do(mux, "GET", "/api/activities", "")
	var list []activity.StoredActivity
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != "washer" || list[0].LatestEnd == nil || *list[0].LatestEnd != "22:00:00" {
		t.Fatalf("unexpected list %+v", list)
	}

	if rr := do(mux, "DELETE", "/api/activities/washer", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rr.Code)
	}
	if rr := do(mux, "DELETE", "/api/activities/washer", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status %d", rr.Code)
	}
	rr = do(mux, "GET", "/api/activities", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %s", rr.Body.String())
	}
}
