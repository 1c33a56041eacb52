package export

import (
	"time"

	"github.com/kilianp07/energyadvisor/core/model"
)

// PlanDocument is the serialised form of a schedule. Money is rendered as
// decimal strings and timestamps as RFC 3339.
type PlanDocument struct {
	GeneratedAt  string             `json:"generated_at"`
	HorizonStart string             `json:"horizon_start"`
	HorizonEnd   string             `json:"horizon_end"`
	TotalCost    string             `json:"total_cost"`
	AveragePrice string             `json:"average_price"`
	Unscheduled  []string           `json:"unscheduled"`
	Activities   []ActivityDocument `json:"activities"`
}

// ActivityDocument is one scheduled activity.
type ActivityDocument struct {
	ActivityID string         `json:"activity_id"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Cost       string         `json:"cost"`
	Slots      []SlotDocument `json:"slots"`
}

// SlotDocument is one price slot used by an activity.
type SlotDocument struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

func ts(t time.Time) string { return t.Format(time.RFC3339) }

// NewPlanDocument converts sol.
func NewPlanDocument(sol model.ScheduleSolution) PlanDocument {
	doc := PlanDocument{
		GeneratedAt:  ts(sol.GeneratedAt),
		HorizonStart: ts(sol.HorizonStart),
		HorizonEnd:   ts(sol.HorizonEnd),
		TotalCost:    sol.TotalCost.String(),
		AveragePrice: sol.AveragePrice.String(),
		Unscheduled:  append([]string{}, sol.UnscheduledActivityIDs...),
		Activities:   make([]ActivityDocument, 0, len(sol.Activities)),
	}
	for _, a := range sol.Activities {
		ad := ActivityDocument{
			ActivityID: a.ActivityID,
			Start:      ts(a.Start),
			End:        ts(a.End),
			Cost:       a.Cost.String(),
			Slots:      make([]SlotDocument, 0, len(a.SlotPrices)),
		}
		for _, s := range a.SlotPrices {
			ad.Slots = append(ad.Slots, SlotDocument{
				Start:    ts(s.Start),
				End:      ts(s.End),
				Price:    s.Price.String(),
				Currency: s.Currency,
			})
		}
		doc.Activities = append(doc.Activities, ad)
	}
	return doc
}
