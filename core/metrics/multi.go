package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlanRun forwards the run to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPlanRun(ev PlanRunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlanRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPlacements forwards placements when supported by the sink.
func (m *MultiSink) RecordPlacements(evs []PlacementEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PlacementRecorder); ok {
			if err := rec.RecordPlacements(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPriceIngest forwards price fetches when supported by the sink.
func (m *MultiSink) RecordPriceIngest(ev PriceIngestEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PriceIngestRecorder); ok {
			if err := rec.RecordPriceIngest(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordActivityCount forwards the activity gauge when supported by the sink.
func (m *MultiSink) RecordActivityCount(n int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ActivityCountRecorder); ok {
			if err := rec.RecordActivityCount(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases sinks that hold connections.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
