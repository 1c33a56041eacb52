package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/energyadvisor/core/events"
	"github.com/kilianp07/energyadvisor/pkg/export"
)

// Record captures one planning run.
type Record struct {
	RunID       string               `json:"run_id"`
	Timestamp   time.Time            `json:"timestamp"`
	Trigger     events.Trigger       `json:"trigger"`
	DurationMS  int64                `json:"duration_ms"`
	PricePoints int                  `json:"price_points"`
	Error       string               `json:"error,omitempty"`
	ErrorKind   string               `json:"error_kind,omitempty"`
	Plan        *export.PlanDocument `json:"plan,omitempty"`
}

// Failed reports whether the run aborted.
func (r Record) Failed() bool { return r.Error != "" }

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start      time.Time
	End        time.Time
	Trigger    events.Trigger
	ActivityID string
	FailedOnly bool
	// Limit keeps the most recent records when positive.
	Limit int
}

// Store persists Records and supports querying. Query returns records in
// timestamp order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// FromEvent converts a plan event into a Record.
func FromEvent(ev events.PlanEvent) Record {
	rec := Record{
		RunID:       ev.RunID,
		Timestamp:   ev.Time.UTC(),
		Trigger:     ev.Trigger,
		DurationMS:  ev.Duration.Milliseconds(),
		PricePoints: len(ev.Prices),
		ErrorKind:   ev.ErrorKind,
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}
	if ev.Solution != nil {
		doc := export.NewPlanDocument(*ev.Solution)
		rec.Plan = &doc
	}
	return rec
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Trigger != "" && r.Trigger != q.Trigger {
		return false
	}
	if q.FailedOnly && !r.Failed() {
		return false
	}
	if q.ActivityID != "" {
		if r.Plan == nil {
			return false
		}
		for _, a := range r.Plan.Activities {
			if a.ActivityID == q.ActivityID {
				return true
			}
		}
		for _, id := range r.Plan.Unscheduled {
			if id == q.ActivityID {
				return true
			}
		}
		return false
	}
	return true
}

func (q Query) limit(res []Record) []Record {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}
