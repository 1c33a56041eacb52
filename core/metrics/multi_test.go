package metrics

import "testing"

type recordSink struct {
	count int
}

func (r *recordSink) RecordPlanRun(PlanRunEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordPlacements([]PlacementEvent) error {
	r.count++
	return nil
}

// runOnly implements only the mandatory interface.
type runOnly struct{ count int }

func (r *runOnly) RecordPlanRun(PlanRunEvent) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &runOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordPlanRun(PlanRunEvent{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordPlacements(nil); err != nil {
		t.Fatalf("record placements: %v", err)
	}
	if err := m.RecordPriceIngest(PriceIngestEvent{}); err != nil {
		t.Fatalf("record ingest: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
	if s3.count != 1 {
		t.Fatalf("optional recorder should be skipped, got %d", s3.count)
	}
}

type closingSink struct {
	runOnly
	closed bool
}

func (c *closingSink) Close() { c.closed = true }

func TestMultiSinkClose(t *testing.T) {
	c := &closingSink{}
	m := NewMultiSink(&runOnly{}, c)
	m.Close()
	if !c.closed {
		t.Fatalf("closable sink not closed")
	}
}
