package model

import "fmt"

// ActivityDefinition is a unit of work the planner places on the price timeline.
// The planner never mutates it.
type ActivityDefinition struct {
	ID              string
	Name            string
	DurationMinutes int
	// EarliestStart and LatestEnd are interpreted on the date of the candidate
	// placement. Nil falls back to the configured planning window.
	EarliestStart *TimeOfDay
	LatestEnd     *TimeOfDay
	// Priority orders scheduling: lower values are placed first.
	Priority int
	Metadata map[string]any
}

// Validate checks the definition is schedulable.
func (a ActivityDefinition) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("activity id required")
	}
	if a.DurationMinutes <= 0 {
		return fmt.Errorf("activity %s: duration must be positive", a.ID)
	}
	if a.EarliestStart != nil {
		if err := a.EarliestStart.Validate(); err != nil {
			return fmt.Errorf("activity %s: earliest start: %w", a.ID, err)
		}
	}
	if a.LatestEnd != nil {
		if err := a.LatestEnd.Validate(); err != nil {
			return fmt.Errorf("activity %s: latest end: %w", a.ID, err)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can hand definitions to concurrent planning runs.
func (a ActivityDefinition) Clone() ActivityDefinition {
	c := a
	if a.EarliestStart != nil {
		v := *a.EarliestStart
		c.EarliestStart = &v
	}
	if a.LatestEnd != nil {
		v := *a.LatestEnd
		c.LatestEnd = &v
	}
	if a.Metadata != nil {
		c.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// CloneActivities deep copies a slice of definitions.
func CloneActivities(in []ActivityDefinition) []ActivityDefinition {
	if in == nil {
		return nil
	}
	out := make([]ActivityDefinition, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
