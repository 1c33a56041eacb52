package events

import (
	"time"

	"github.com/kilianp07/energyadvisor/core/model"
)

// Trigger names what started a planning run.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerInterval Trigger = "interval"
	TriggerPrice    Trigger = "price_change"
	TriggerActivity Trigger = "activity_change"
	TriggerManual   Trigger = "manual"
)

// PlanEvent is published after every planning run. Solution is nil when Err
// is set.
type PlanEvent struct {
	RunID     string
	Trigger   Trigger
	Solution  *model.ScheduleSolution
	Prices    []model.PricePoint
	Err       error
	ErrorKind string
	Duration  time.Duration
	Time      time.Time
}
