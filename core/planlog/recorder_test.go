package planlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/energyadvisor/core/events"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/internal/eventbus"
)

func TestStartRecorder(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	bus := eventbus.New[events.PlanEvent]()
	done := StartRecorder(context.Background(), bus, store, logger.NopLogger{})

	bus.Publish(events.PlanEvent{RunID: "run", Trigger: events.TriggerManual, Time: time.Now()})
	deadline := time.Now().Add(2 * time.Second)
	for {
		recs, err := store.Query(context.Background(), Query{})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(recs) == 1 {
			if recs[0].RunID != "run" || recs[0].Trigger != events.TriggerManual {
				t.Fatalf("unexpected record %+v", recs[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event not recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}

	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop after bus close")
	}
}
