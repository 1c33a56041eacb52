package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/energyadvisor/core/events"
	"github.com/kilianp07/energyadvisor/core/model"
	coremqtt "github.com/kilianp07/energyadvisor/core/mqtt"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/internal/eventbus"
	"github.com/kilianp07/energyadvisor/pkg/export"
)

// StateDocument is the retained plan message. State carries the generation
// time so consumers can detect a new plan without parsing the attributes.
type StateDocument struct {
	State      string              `json:"state"`
	Attributes export.PlanDocument `json:"attributes"`
}

// StatePublisher mirrors each successful plan to a retained MQTT topic.
type StatePublisher struct {
	pub   coremqtt.Publisher
	topic string
	log   logger.Logger
}

func NewStatePublisher(pub coremqtt.Publisher, topic string, log logger.Logger) *StatePublisher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &StatePublisher{pub: pub, topic: topic, log: log}
}

// Publish sends sol as a retained StateDocument.
func (s *StatePublisher) Publish(sol model.ScheduleSolution) error {
	doc := export.NewPlanDocument(sol)
	payload, err := json.Marshal(StateDocument{State: doc.GeneratedAt, Attributes: doc})
	if err != nil {
		return fmt.Errorf("encode plan state: %w", err)
	}
	return s.pub.Publish(s.topic, payload, true)
}

// Start subscribes to bus before returning, then publishes every successful
// plan event in a background goroutine until ctx is done or the bus closes.
// Failed runs leave the previous retained plan in place. The returned channel
// is closed when the publisher stops.
func (s *StatePublisher) Start(ctx context.Context, bus *eventbus.Bus[events.PlanEvent]) <-chan struct{} {
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
				if ev.Err != nil || ev.Solution == nil {
					continue
				}
				if err := s.Publish(*ev.Solution); err != nil {
					s.log.Errorf("publish plan %s: %v", ev.RunID, err)
				}
			}
		}
	}()
	return done
}
