package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledActivity is one placement produced by a planning run.
type ScheduledActivity struct {
	ActivityID string
	Start      time.Time
	End        time.Time
	// SlotPrices lists the slots occupied by the activity, in order.
	SlotPrices []PricePoint
	Cost       decimal.Decimal
}

// Minutes returns the scheduled duration in whole minutes.
func (s ScheduledActivity) Minutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// ScheduleSolution is the full output of a planning run.
type ScheduleSolution struct {
	GeneratedAt            time.Time
	HorizonStart           time.Time
	HorizonEnd             time.Time
	Activities             []ScheduledActivity
	TotalCost              decimal.Decimal
	AveragePrice           decimal.Decimal
	UnscheduledActivityIDs []string
}

// Activity returns the placement for id, if any.
func (s ScheduleSolution) Activity(id string) (ScheduledActivity, bool) {
	for _, a := range s.Activities {
		if a.ActivityID == id {
			return a, true
		}
	}
	return ScheduledActivity{}, false
}
