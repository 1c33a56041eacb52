package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/energyadvisor/core/activity"
	"github.com/kilianp07/energyadvisor/core/events"
	coremetrics "github.com/kilianp07/energyadvisor/core/metrics"
	"github.com/kilianp07/energyadvisor/core/model"
	"github.com/kilianp07/energyadvisor/core/planner"
	"github.com/kilianp07/energyadvisor/core/price"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/internal/eventbus"
)

func sensorState(values ...any) *price.SensorState {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]any, 0, len(values))
	for i, v := range values {
		entries = append(entries, map[string]any{
			"start": base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			"end":   base.Add(time.Duration(i+1) * time.Hour).Format(time.RFC3339),
			"value": v,
		})
	}
	return &price.SensorState{
		EntityID:   "sensor.price",
		State:      "ok",
		Attributes: map[string]any{"currency": "EUR", "raw_today": entries},
	}
}

type recordSink struct {
	coremetrics.NopSink
	mu         sync.Mutex
	ingests    []coremetrics.PriceIngestEvent
	activities []int
}

func (r *recordSink) RecordPriceIngest(ev coremetrics.PriceIngestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingests = append(r.ingests, ev)
	return nil
}

func (r *recordSink) RecordActivityCount(n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = append(r.activities, n)
	return nil
}

type fixture struct {
	src     *price.StaticSource
	manager *activity.Manager
	bus     *eventbus.Bus[events.PlanEvent]
	sink    *recordSink
	coord   *Coordinator
}

func newFixture(t *testing.T, interval time.Duration) fixture {
	t.Helper()
	src := price.NewStaticSource(sensorState(0.30, 0.10, 0.20, 0.40))
	manager, err := activity.NewManager(context.Background(), activity.NewMemoryStore(), logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if err := manager.Add(context.Background(), model.ActivityDefinition{ID: "washer", DurationMinutes: 60, Priority: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	bus := eventbus.New[events.PlanEvent]()
	sink := &recordSink{}
	cfg := Config{Planner: model.DefaultPlannerConfig(), Interval: interval, FetchTimeout: time.Second, SourceName: "static"}
	coord := New(cfg, src, manager, bus, sink, logger.NopLogger{})
	return fixture{src: src, manager: manager, bus: bus, sink: sink, coord: coord}
}

func TestRefreshPublishesSolution(t *testing.T) {
	f := newFixture(t, 0)
	sub := f.bus.Subscribe()

	sol, err := f.coord.Refresh(context.Background(), events.TriggerManual)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(sol.Activities) != 1 || sol.Activities[0].Start.Hour() != 1 {
		t.Fatalf("expected washer in cheapest hour, got %+v", sol.Activities)
	}
	cur, ok := f.coord.Solution()
	if !ok || cur != sol {
		t.Fatalf("solution not stored")
	}
	if len(f.coord.Prices()) != 4 {
		t.Fatalf("expected 4 prices, got %d", len(f.coord.Prices()))
	}

	ev := <-sub
	if ev.Trigger != events.TriggerManual || ev.Solution == nil || ev.RunID == "" || ev.Err != nil {
		t.Fatalf("unexpected event %+v", ev)
	}

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	if len(f.sink.ingests) != 1 || f.sink.ingests[0].Points != 4 || f.sink.ingests[0].Source != "static" {
		t.Fatalf("price ingest not recorded: %+v", f.sink.ingests)
	}
	if len(f.sink.activities) == 0 || f.sink.activities[len(f.sink.activities)-1] != 1 {
		t.Fatalf("activity count not recorded: %+v", f.sink.activities)
	}
}

func TestFailureKeepsPreviousPlan(t *testing.T) {
	f := newFixture(t, 0)
	first, err := f.coord.Refresh(context.Background(), events.TriggerStartup)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	sub := f.bus.Subscribe()
	f.src.Set(&price.SensorState{EntityID: "sensor.price", Attributes: map[string]any{}})
	if _, err := f.coord.Refresh(context.Background(), events.TriggerManual); !errors.Is(err, price.ErrNoRawData) {
		t.Fatalf("expected no raw data error, got %v", err)
	}
	if cur, _ := f.coord.Solution(); cur != first {
		t.Fatalf("previous plan replaced after failure")
	}
	if f.coord.LastError() == nil {
		t.Fatalf("last error not recorded")
	}
	ev := <-sub
	if ev.Err == nil || ev.ErrorKind != "no_raw_data" || ev.Solution != nil {
		t.Fatalf("unexpected failure event %+v", ev)
	}

	f.src.Set(sensorState(0.1, 0.2))
	if _, err := f.coord.Refresh(context.Background(), events.TriggerManual); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if f.coord.LastError() != nil {
		t.Fatalf("last error not cleared")
	}
}

func TestCurrentPairsPlanWithItsPrices(t *testing.T) {
	f := newFixture(t, 0)
	if _, _, ok := f.coord.Current(); ok {
		t.Fatalf("plan reported before first run")
	}
	if _, err := f.coord.Refresh(context.Background(), events.TriggerStartup); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	f.src.Set(sensorState(0.50, 0.40))
	second, err := f.coord.Refresh(context.Background(), events.TriggerPrice)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	sol, prices, ok := f.coord.Current()
	if !ok || sol != second {
		t.Fatalf("latest plan not current")
	}
	if len(prices) != 2 || !prices[1].Price.Equal(decimal.RequireFromString("0.4")) {
		t.Fatalf("prices do not belong to the latest plan: %+v", prices)
	}
	if !sol.HorizonEnd.Equal(prices[len(prices)-1].End) {
		t.Fatalf("horizon %v does not match prices ending %v", sol.HorizonEnd, prices[len(prices)-1].End)
	}
}

func TestPlanningErrorKind(t *testing.T) {
	f := newFixture(t, 0)
	f.coord.cfg.Planner.SlotMinutes = 45
	_, err := f.coord.Refresh(context.Background(), events.TriggerManual)
	if !errors.Is(err, planner.ErrIncompatibleResolution) {
		t.Fatalf("expected incompatible resolution, got %v", err)
	}
	if kind := ErrorKind(err); kind != "incompatible_resolution" {
		t.Fatalf("unexpected kind %s", kind)
	}
}

type blockingSource struct{}

func (blockingSource) Fetch(ctx context.Context) (*price.SensorState, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchTimeout(t *testing.T) {
	manager, err := activity.NewManager(context.Background(), activity.NewMemoryStore(), logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	c := New(Config{Planner: model.DefaultPlannerConfig(), FetchTimeout: 20 * time.Millisecond}, blockingSource{}, manager, nil, nil, logger.NopLogger{})
	_, err = c.Refresh(context.Background(), events.TriggerManual)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if ErrorKind(err) != "timeout" {
		t.Fatalf("unexpected kind %s", ErrorKind(err))
	}
}

func TestRequestRefreshCoalesces(t *testing.T) {
	f := newFixture(t, 0)
	for i := 0; i < 5; i++ {
		f.coord.RequestRefresh(events.TriggerManual)
	}
	if n := len(f.coord.requests); n != 1 {
		t.Fatalf("expected one pending request, got %d", n)
	}
}

func waitFor(t *testing.T, sub <-chan events.PlanEvent, trigger events.Trigger) events.PlanEvent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sub:
			if ev.Trigger == trigger {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %s run", trigger)
		}
	}
}

func TestRunReactsToChanges(t *testing.T) {
	f := newFixture(t, 0)
	sub := f.bus.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.coord.Run(ctx)

	waitFor(t, sub, events.TriggerStartup)

	if err := f.manager.Add(context.Background(), model.ActivityDefinition{ID: "dryer", DurationMinutes: 60, Priority: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	ev := waitFor(t, sub, events.TriggerActivity)
	if ev.Solution == nil || len(ev.Solution.Activities) != 2 {
		t.Fatalf("activity change not planned: %+v", ev.Solution)
	}

	f.src.Set(sensorState(0.05, 0.50, 0.50, 0.50))
	ev = waitFor(t, sub, events.TriggerPrice)
	if ev.Solution == nil {
		t.Fatalf("price change run failed: %v", ev.Err)
	}
	washer, ok := ev.Solution.Activity("washer")
	if !ok || washer.Start.Hour() != 0 {
		t.Fatalf("washer not moved to new cheapest hour: %+v", washer)
	}
}

func TestRunTicks(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)
	sub := f.bus.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.coord.Run(ctx)
	waitFor(t, sub, events.TriggerInterval)
}
