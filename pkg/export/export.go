package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/energyadvisor/core/model"
)

// WriteJSON writes the plan to w as a PlanDocument.
func WriteJSON(w io.Writer, sol model.ScheduleSolution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewPlanDocument(sol))
}

// WriteCSV writes one row per scheduled activity followed by one row per
// unscheduled activity with empty times.
func WriteCSV(w io.Writer, sol model.ScheduleSolution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"activity_id", "status", "start", "end", "minutes", "cost"}); err != nil {
		return err
	}
	for _, a := range sol.Activities {
		rec := []string{
			a.ActivityID,
			"scheduled",
			a.Start.Format(time.RFC3339),
			a.End.Format(time.RFC3339),
			strconv.Itoa(a.Minutes()),
			a.Cost.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, id := range sol.UnscheduledActivityIDs {
		if err := cw.Write([]string{id, "unscheduled", "", "", "", ""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
