package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/energyadvisor/core/metrics"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordPlanRun(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.PlanRunEvent{
		RunID: "r1", Trigger: "manual", Success: true,
		Duration: 1500 * time.Microsecond, Scheduled: 2, Unscheduled: 1,
		TotalCost: 0.075, AveragePrice: 0.15, Time: now,
	}
	if err := sink.RecordPlanRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("plan_run").
		AddTag("run_id", "r1").
		AddTag("trigger", "manual").
		AddTag("success", "true").
		AddField("duration_ms", 1.5).
		AddField("scheduled", 2).
		AddField("unscheduled", 1).
		AddField("total_cost", 0.075).
		AddField("average_price", 0.15).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %v", got)
	}
}

func TestInfluxSink_RecordPlacements(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	evs := []coremetrics.PlacementEvent{
		{RunID: "r1", ActivityID: "a", Scheduled: true, Start: now, Minutes: 30, Cost: 0.1, Time: now},
		{RunID: "r1", ActivityID: "b", Time: now},
	}
	if err := sink.RecordPlacements(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if err := sink.RecordPlacements(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}
	reqs := bodies()
	if len(reqs) != 1 {
		t.Fatalf("expected a single batched write, got %d", len(reqs))
	}
	got := strings.Split(reqs[0], "\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 points got %d", len(got))
	}
	if !strings.Contains(got[0], "activity_id=a") || !strings.Contains(got[0], "start=") {
		t.Errorf("unexpected first point: %s", got[0])
	}
	if !strings.Contains(got[1], "scheduled=false") || strings.Contains(got[1], "start=") {
		t.Errorf("unexpected second point: %s", got[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
