package planner

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/energyadvisor/core/model"
)

// Normalize sorts raw price points and aggregates them into slots of
// targetSlotMinutes. The raw resolution is taken from the earliest point.
// A trailing group shorter than one target slot is dropped.
func Normalize(raw []model.PricePoint, targetSlotMinutes int) ([]model.PricePoint, error) {
	if len(raw) == 0 {
		return nil, planningError(ErrNoPriceData, "no price data available for planning")
	}
	sorted := make([]model.PricePoint, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	rawMinutes := sorted[0].DurationMinutes()
	if rawMinutes <= 0 {
		return nil, planningError(ErrInvalidSlotResolution, "invalid raw price slot duration")
	}
	if targetSlotMinutes <= 0 {
		return nil, planningError(ErrInvalidSlotResolution,
			fmt.Sprintf("configured slot minutes must be positive, got %d", targetSlotMinutes))
	}
	if targetSlotMinutes%rawMinutes != 0 {
		return nil, planningError(ErrIncompatibleResolution,
			fmt.Sprintf("configured slot minutes (%d) must be a multiple of raw data resolution (%d)", targetSlotMinutes, rawMinutes))
	}
	if targetSlotMinutes == rawMinutes {
		return sorted, nil
	}

	ratio := targetSlotMinutes / rawMinutes
	out := make([]model.PricePoint, 0, len(sorted)/ratio)
	for i := 0; i+ratio <= len(sorted); i += ratio {
		chunk := sorted[i : i+ratio]
		total := decimal.Zero
		for _, p := range chunk {
			total = total.Add(p.Price)
		}
		out = append(out, model.PricePoint{
			Start:    chunk[0].Start,
			End:      chunk[len(chunk)-1].End,
			Price:    total.Div(decimal.NewFromInt(int64(len(chunk)))),
			Currency: chunk[0].Currency,
		})
	}
	if len(out) == 0 {
		return nil, planningError(ErrAggregationEmpty,
			fmt.Sprintf("%d raw points do not fill one %d minute slot", len(sorted), targetSlotMinutes))
	}
	return out, nil
}
