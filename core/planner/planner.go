package planner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/energyadvisor/core/model"
)

// Inputs is a single planning request.
type Inputs struct {
	Config     model.PlannerConfig
	Activities []model.ActivityDefinition
	Prices     []model.PricePoint
}

// NewInputs builds Inputs holding private copies of activities and prices so
// the caller may keep mutating its own slices.
func NewInputs(cfg model.PlannerConfig, activities []model.ActivityDefinition, prices []model.PricePoint) Inputs {
	p := make([]model.PricePoint, len(prices))
	copy(p, prices)
	return Inputs{
		Config:     cfg,
		Activities: model.CloneActivities(activities),
		Prices:     p,
	}
}

// Planner generates schedules. The zero value uses the wall clock in UTC.
type Planner struct {
	// Clock stamps GeneratedAt.
	Clock func() time.Time
}

// GeneratePlan runs a planning pass with the default Planner.
func GeneratePlan(in Inputs) (model.ScheduleSolution, error) {
	return Planner{}.Generate(in)
}

// Generate normalizes the prices, allocates the activities and computes the
// totals. A non-nil error is a *Error and no solution is produced.
func (p Planner) Generate(in Inputs) (model.ScheduleSolution, error) {
	slots, err := Normalize(in.Prices, in.Config.SlotMinutes)
	if err != nil {
		return model.ScheduleSolution{}, err
	}

	scheduled, unscheduled := Allocate(slots, in.Activities, in.Config)

	total := decimal.Zero
	minutes := 0
	for _, a := range scheduled {
		total = total.Add(a.Cost)
		minutes += a.Minutes()
	}
	average := decimal.Zero
	if minutes > 0 {
		average = total.Mul(sixty).Div(decimal.NewFromInt(int64(minutes)))
	}
	if scheduled == nil {
		scheduled = []model.ScheduledActivity{}
	}
	if unscheduled == nil {
		unscheduled = []string{}
	}

	return model.ScheduleSolution{
		GeneratedAt:            p.now(),
		HorizonStart:           slots[0].Start,
		HorizonEnd:             slots[len(slots)-1].End,
		Activities:             scheduled,
		TotalCost:              total,
		AveragePrice:           average,
		UnscheduledActivityIDs: unscheduled,
	}, nil
}

func (p Planner) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now().UTC()
}
