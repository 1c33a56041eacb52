package metrics

import (
	"github.com/kilianp07/energyadvisor/core/events"
)

// RunEvent converts a plan event into the sink representation.
func RunEvent(ev events.PlanEvent) PlanRunEvent {
	out := PlanRunEvent{
		RunID:    ev.RunID,
		Trigger:  string(ev.Trigger),
		Success:  ev.Err == nil,
		Duration: ev.Duration,
		Time:     ev.Time,
	}
	if ev.Err != nil {
		out.ErrorKind = ev.ErrorKind
		return out
	}
	if sol := ev.Solution; sol != nil {
		out.Scheduled = len(sol.Activities)
		out.Unscheduled = len(sol.UnscheduledActivityIDs)
		out.TotalCost = Float(sol.TotalCost)
		out.AveragePrice = Float(sol.AveragePrice)
	}
	if len(ev.Prices) > 0 {
		out.Currency = ev.Prices[0].Currency
	}
	return out
}

// Placements lists one event per scheduled and unscheduled activity.
func Placements(ev events.PlanEvent) []PlacementEvent {
	sol := ev.Solution
	if sol == nil {
		return nil
	}
	out := make([]PlacementEvent, 0, len(sol.Activities)+len(sol.UnscheduledActivityIDs))
	for _, a := range sol.Activities {
		out = append(out, PlacementEvent{
			RunID:      ev.RunID,
			ActivityID: a.ActivityID,
			Scheduled:  true,
			Start:      a.Start,
			Minutes:    a.Minutes(),
			Cost:       Float(a.Cost),
			Time:       ev.Time,
		})
	}
	for _, id := range sol.UnscheduledActivityIDs {
		out = append(out, PlacementEvent{RunID: ev.RunID, ActivityID: id, Time: ev.Time})
	}
	return out
}
