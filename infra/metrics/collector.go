package metrics

import (
	"context"

	"github.com/kilianp07/energyadvisor/core/events"
	coremetrics "github.com/kilianp07/energyadvisor/core/metrics"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/internal/eventbus"
)

// StartEventCollector subscribes to the plan bus and records every run on
// sink. It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.PlanEvent], sink coremetrics.MetricsSink, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(ev, sink, log)
			}
		}
	}()
}

func record(ev events.PlanEvent, sink coremetrics.MetricsSink, log logger.Logger) {
	if err := sink.RecordPlanRun(coremetrics.RunEvent(ev)); err != nil {
		log.Warnf("record plan run %s: %v", ev.RunID, err)
	}
	if ev.Err != nil {
		return
	}
	if r, ok := sink.(coremetrics.PlacementRecorder); ok {
		if err := r.RecordPlacements(coremetrics.Placements(ev)); err != nil {
			log.Warnf("record placements %s: %v", ev.RunID, err)
		}
	}
}
