package planlog

import (
	"context"

	"github.com/kilianp07/energyadvisor/core/events"
	"github.com/kilianp07/energyadvisor/core/logger"
	"github.com/kilianp07/energyadvisor/internal/eventbus"
)

// StartRecorder subscribes to bus and appends every plan event to store in
// a background goroutine. The returned channel is closed once the recorder
// stops, when ctx is done or the bus closes.
func StartRecorder(ctx context.Context, bus *eventbus.Bus[events.PlanEvent], store Store, log logger.Logger) <-chan struct{} {
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := store.Append(ctx, FromEvent(ev)); err != nil {
					log.Errorf("plan log append %s: %v", ev.RunID, err)
				}
			}
		}
	}()
	return done
}
