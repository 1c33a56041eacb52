package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/energyadvisor/core/events"
	"github.com/kilianp07/energyadvisor/core/logger"
	coremetrics "github.com/kilianp07/energyadvisor/core/metrics"
	"github.com/kilianp07/energyadvisor/core/model"
	coremon "github.com/kilianp07/energyadvisor/core/monitoring"
	"github.com/kilianp07/energyadvisor/core/planner"
	"github.com/kilianp07/energyadvisor/core/price"
	"github.com/kilianp07/energyadvisor/internal/eventbus"
)

// Config controls the refresh policy.
type Config struct {
	Planner model.PlannerConfig
	// Interval between periodic runs. Zero disables the ticker.
	Interval time.Duration
	// FetchTimeout bounds each price fetch. Zero means no bound.
	FetchTimeout time.Duration
	// SourceName labels price ingest metrics.
	SourceName string
}

// ActivityLister yields the activities to plan. activity.Manager implements it.
type ActivityLister interface {
	List() []model.ActivityDefinition
}

type activityNotifier interface {
	OnChange(fn func([]model.ActivityDefinition))
}

type failure struct {
	err error
}

// planState pairs a solution with the prices it was built from so readers
// never see one run's plan next to another run's prices.
type planState struct {
	sol    *model.ScheduleSolution
	prices []model.PricePoint
}

// Coordinator runs the planner against the current prices and activities.
type Coordinator struct {
	cfg        Config
	source     price.Source
	activities ActivityLister
	planner    planner.Planner
	bus        *eventbus.Bus[events.PlanEvent]
	sink       coremetrics.MetricsSink
	log        logger.Logger

	runMu    sync.Mutex
	requests chan events.Trigger

	current atomic.Pointer[planState]
	lastErr atomic.Pointer[failure]
}

// New wires a coordinator. Sources implementing price.ChangeNotifier and
// listers exposing OnChange trigger refreshes automatically. bus and sink
// may be nil.
func New(cfg Config, src price.Source, acts ActivityLister, bus *eventbus.Bus[events.PlanEvent], sink coremetrics.MetricsSink, log logger.Logger) *Coordinator {
	if bus == nil {
		bus = eventbus.New[events.PlanEvent]()
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	c := &Coordinator{
		cfg:        cfg,
		source:     src,
		activities: acts,
		bus:        bus,
		sink:       sink,
		log:        log,
		requests:   make(chan events.Trigger, 1),
	}
	if n, ok := src.(price.ChangeNotifier); ok {
		n.OnChange(func() { c.RequestRefresh(events.TriggerPrice) })
	}
	if n, ok := acts.(activityNotifier); ok {
		n.OnChange(func(defs []model.ActivityDefinition) {
			c.recordActivityCount(len(defs))
			c.RequestRefresh(events.TriggerActivity)
		})
	}
	c.recordActivityCount(len(acts.List()))
	return c
}

// SetClock overrides the planner's generation timestamp source.
func (c *Coordinator) SetClock(now func() time.Time) { c.planner.Clock = now }

// Bus returns the bus plan events are published on.
func (c *Coordinator) Bus() *eventbus.Bus[events.PlanEvent] { return c.bus }

// RequestRefresh queues a run. Requests made while one is already queued
// are merged into it.
func (c *Coordinator) RequestRefresh(trigger events.Trigger) {
	select {
	case c.requests <- trigger:
	default:
		c.log.Debugf("refresh already pending, %s request merged", trigger)
	}
}

// Run plans once at startup and then serves refresh requests until ctx is
// done.
func (c *Coordinator) Run(ctx context.Context) {
	defer coremon.Recover()
	c.refreshLogged(ctx, events.TriggerStartup)

	var tick <-chan time.Time
	if c.cfg.Interval > 0 {
		ticker := time.NewTicker(c.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			c.refreshLogged(ctx, events.TriggerInterval)
		case trigger := <-c.requests:
			c.refreshLogged(ctx, trigger)
		}
	}
}

func (c *Coordinator) refreshLogged(ctx context.Context, trigger events.Trigger) {
	if _, err := c.Refresh(ctx, trigger); err != nil && ctx.Err() == nil {
		c.log.Warnf("planning run (%s) failed, keeping previous plan: %v", trigger, err)
	}
}

// Refresh runs the planner now and returns the new solution. On failure the
// previous solution stays current.
func (c *Coordinator) Refresh(ctx context.Context, trigger events.Trigger) (*model.ScheduleSolution, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	runID := uuid.NewString()
	started := time.Now()
	ev := events.PlanEvent{RunID: runID, Trigger: trigger, Time: started.UTC()}

	prices, err := c.fetchPrices(ctx)
	var sol model.ScheduleSolution
	if err == nil {
		ev.Prices = prices
		in := planner.NewInputs(c.cfg.Planner, c.activities.List(), prices)
		sol, err = c.planner.Generate(in)
	}
	ev.Duration = time.Since(started)

	if err != nil {
		ev.Err = err
		ev.ErrorKind = ErrorKind(err)
		c.lastErr.Store(&failure{err: err})
		coremon.CaptureException(err, map[string]string{
			"module":  "coordinator",
			"trigger": string(trigger),
			"kind":    ev.ErrorKind,
		})
		c.bus.Publish(ev)
		return nil, fmt.Errorf("plan run %s: %w", runID, err)
	}

	c.current.Store(&planState{sol: &sol, prices: prices})
	c.lastErr.Store(nil)
	ev.Solution = &sol
	c.log.Infof("plan %s (%s): %d scheduled, %d unscheduled, total cost %s",
		runID, trigger, len(sol.Activities), len(sol.UnscheduledActivityIDs), sol.TotalCost.String())
	c.bus.Publish(ev)
	return &sol, nil
}

func (c *Coordinator) fetchPrices(ctx context.Context) ([]model.PricePoint, error) {
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}
	points, err := price.FetchPoints(ctx, c.source)
	c.recordPriceIngest(points, err)
	return points, err
}

func (c *Coordinator) recordPriceIngest(points []model.PricePoint, err error) {
	r, ok := c.sink.(coremetrics.PriceIngestRecorder)
	if !ok {
		return
	}
	ev := coremetrics.PriceIngestEvent{
		Source:  c.cfg.SourceName,
		Points:  len(points),
		Summary: coremetrics.SummarizePrices(points),
		Time:    time.Now().UTC(),
	}
	if err != nil {
		ev.Error = ErrorKind(err)
	}
	if rerr := r.RecordPriceIngest(ev); rerr != nil {
		c.log.Warnf("record price ingest: %v", rerr)
	}
}

func (c *Coordinator) recordActivityCount(n int) {
	if r, ok := c.sink.(coremetrics.ActivityCountRecorder); ok {
		if err := r.RecordActivityCount(n); err != nil {
			c.log.Warnf("record activity count: %v", err)
		}
	}
}

// Solution returns the latest successful plan.
func (c *Coordinator) Solution() (*model.ScheduleSolution, bool) {
	sol, _, ok := c.Current()
	return sol, ok
}

// Prices returns the raw price points the latest successful plan was built
// from.
func (c *Coordinator) Prices() []model.PricePoint {
	_, prices, _ := c.Current()
	return prices
}

// Current returns the latest successful plan together with the prices it was
// built from, read in a single load.
func (c *Coordinator) Current() (*model.ScheduleSolution, []model.PricePoint, bool) {
	st := c.current.Load()
	if st == nil {
		return nil, nil, false
	}
	return st.sol, st.prices, true
}

// LastError returns the failure of the most recent run, or nil when it
// succeeded.
func (c *Coordinator) LastError() error {
	if f := c.lastErr.Load(); f != nil {
		return f.err
	}
	return nil
}

// ErrorKind labels err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, price.ErrSensorUnavailable):
		return "sensor_unavailable"
	case errors.Is(err, price.ErrNoRawData):
		return "no_raw_data"
	case errors.Is(err, price.ErrNoValidEntries):
		return "no_valid_entries"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return planner.Kind(err)
	}
}
