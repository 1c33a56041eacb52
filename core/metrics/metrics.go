package metrics

import "time"

// PlanRunEvent summarises one planning run.
type PlanRunEvent struct {
	RunID        string
	Trigger      string
	Success      bool
	ErrorKind    string
	Duration     time.Duration
	Scheduled    int
	Unscheduled  int
	TotalCost    float64
	AveragePrice float64
	Currency     string
	Time         time.Time
}

// MetricsSink records planning runs for observability purposes.
type MetricsSink interface {
	RecordPlanRun(ev PlanRunEvent) error
}

// PlacementEvent describes where one activity landed, or that it could not
// be placed.
type PlacementEvent struct {
	RunID      string
	ActivityID string
	Scheduled  bool
	Start      time.Time
	Minutes    int
	Cost       float64
	Time       time.Time
}

// PlacementRecorder records per-activity placements.
type PlacementRecorder interface {
	RecordPlacements(evs []PlacementEvent) error
}

// PriceIngestEvent captures one price fetch.
type PriceIngestEvent struct {
	Source  string
	Points  int
	Summary PriceSummary
	Error   string
	Time    time.Time
}

// PriceIngestRecorder records price fetches.
type PriceIngestRecorder interface {
	RecordPriceIngest(ev PriceIngestEvent) error
}

// ActivityCountRecorder records the number of tracked activities.
type ActivityCountRecorder interface {
	RecordActivityCount(n int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlanRun(PlanRunEvent) error         { return nil }
func (NopSink) RecordPlacements([]PlacementEvent) error  { return nil }
func (NopSink) RecordPriceIngest(PriceIngestEvent) error { return nil }
func (NopSink) RecordActivityCount(int) error            { return nil }
