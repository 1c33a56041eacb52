package planner

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/energyadvisor/core/model"
)

var sixty = decimal.NewFromInt(60)

// Allocate places activities on slots, which must be contiguous and all
// cfg.SlotMinutes long. Activities are processed by ascending priority and,
// within a priority, longest first. Each one gets the cheapest window of free
// slots that fits its time window; on equal cost the earliest window wins.
// Activities with no feasible window are returned by id in unscheduled.
func Allocate(slots []model.PricePoint, activities []model.ActivityDefinition, cfg model.PlannerConfig) (scheduled []model.ScheduledActivity, unscheduled []string) {
	slotMinutes := cfg.SlotMinutes
	if slotMinutes <= 0 {
		for _, a := range activities {
			unscheduled = append(unscheduled, a.ID)
		}
		return nil, unscheduled
	}

	ordered := make([]model.ActivityDefinition, len(activities))
	copy(ordered, activities)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].DurationMinutes > ordered[j].DurationMinutes
	})

	occupied := make([]bool, len(slots))
	for _, a := range ordered {
		placement, start, ok := bestWindow(a, slots, occupied, cfg)
		if !ok {
			unscheduled = append(unscheduled, a.ID)
			continue
		}
		for i := start; i < start+len(placement.SlotPrices); i++ {
			occupied[i] = true
		}
		scheduled = append(scheduled, placement)
	}
	return scheduled, unscheduled
}

func requirement(a model.ActivityDefinition, slotMinutes int) (minutes, slotCount int) {
	minutes = a.DurationMinutes
	if minutes < slotMinutes {
		minutes = slotMinutes
	}
	slotCount = (minutes + slotMinutes - 1) / slotMinutes
	return minutes, slotCount
}

func bestWindow(a model.ActivityDefinition, slots []model.PricePoint, occupied []bool, cfg model.PlannerConfig) (model.ScheduledActivity, int, bool) {
	requiredMinutes, requiredSlots := requirement(a, cfg.SlotMinutes)

	best := -1
	var bestCost decimal.Decimal
	for i := 0; i+requiredSlots <= len(slots); i++ {
		window := slots[i : i+requiredSlots]
		if anyOccupied(occupied[i : i+requiredSlots]) {
			continue
		}
		if !withinWindow(window[0].Start, requiredMinutes, a, cfg) {
			continue
		}
		cost := windowCost(window, requiredMinutes, cfg.SlotMinutes)
		if best < 0 || cost.LessThan(bestCost) {
			best = i
			bestCost = cost
		}
	}
	if best < 0 {
		return model.ScheduledActivity{}, 0, false
	}

	window := slots[best : best+requiredSlots]
	prices := make([]model.PricePoint, len(window))
	copy(prices, window)
	start := window[0].Start
	return model.ScheduledActivity{
		ActivityID: a.ID,
		Start:      start,
		End:        start.Add(time.Duration(requiredMinutes) * time.Minute),
		SlotPrices: prices,
		Cost:       bestCost,
	}, best, true
}

func anyOccupied(occ []bool) bool {
	for _, o := range occ {
		if o {
			return true
		}
	}
	return false
}

// withinWindow reports whether [start, start+minutes) fits the activity's
// window. Both bounds are anchored on start's date, so windows crossing
// midnight never match.
func withinWindow(start time.Time, minutes int, a model.ActivityDefinition, cfg model.PlannerConfig) bool {
	earliest := cfg.WindowStart
	if a.EarliestStart != nil {
		earliest = *a.EarliestStart
	}
	latest := cfg.WindowEnd
	if a.LatestEnd != nil {
		latest = *a.LatestEnd
	}
	end := start.Add(time.Duration(minutes) * time.Minute)
	if start.Before(earliest.On(start)) || end.After(latest.On(start)) {
		return false
	}
	return true
}

// windowCost bills each slot for the minutes consumed from it, the last one
// possibly partially.
func windowCost(window []model.PricePoint, requiredMinutes, slotMinutes int) decimal.Decimal {
	remaining := requiredMinutes
	total := decimal.Zero
	for _, s := range window {
		portion := slotMinutes
		if remaining < portion {
			portion = remaining
		}
		total = total.Add(s.Price.Mul(decimal.NewFromInt(int64(portion))).Div(sixty))
		remaining -= portion
		if remaining <= 0 {
			break
		}
	}
	return total
}
