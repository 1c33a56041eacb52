package activity

import (
	"fmt"

	"github.com/kilianp07/energyadvisor/core/model"
)

// StorageVersion is written into every persisted document.
const StorageVersion = 1

// StoredActivity is the persisted form of a definition. Times are kept as
// "HH:MM[:SS]" strings.
type StoredActivity struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	DurationMinutes int            `json:"duration_minutes" yaml:"duration_minutes"`
	EarliestStart   *string        `json:"earliest_start" yaml:"earliest_start,omitempty"`
	LatestEnd       *string        `json:"latest_end" yaml:"latest_end,omitempty"`
	Priority        int            `json:"priority" yaml:"priority"`
	Metadata        map[string]any `json:"metadata" yaml:"metadata,omitempty"`
}

// Document is the versioned activity store payload.
type Document struct {
	Version    int              `json:"version" yaml:"version"`
	Activities []StoredActivity `json:"activities" yaml:"activities"`
}

func FromDefinition(a model.ActivityDefinition) StoredActivity {
	s := StoredActivity{
		ID:              a.ID,
		Name:            a.Name,
		DurationMinutes: a.DurationMinutes,
		Priority:        a.Priority,
		Metadata:        map[string]any{},
	}
	if a.EarliestStart != nil {
		v := a.EarliestStart.String()
		s.EarliestStart = &v
	}
	if a.LatestEnd != nil {
		v := a.LatestEnd.String()
		s.LatestEnd = &v
	}
	for k, v := range a.Metadata {
		s.Metadata[k] = v
	}
	return s
}

func (s StoredActivity) ToDefinition() (model.ActivityDefinition, error) {
	a := model.ActivityDefinition{
		ID:              s.ID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Priority:        s.Priority,
		Metadata:        map[string]any{},
	}
	var err error
	if a.EarliestStart, err = optionalTime(s.EarliestStart); err != nil {
		return a, fmt.Errorf("activity %s: earliest_start: %w", s.ID, err)
	}
	if a.LatestEnd, err = optionalTime(s.LatestEnd); err != nil {
		return a, fmt.Errorf("activity %s: latest_end: %w", s.ID, err)
	}
	for k, v := range s.Metadata {
		a.Metadata[k] = v
	}
	return a, nil
}

func optionalTime(s *string) (*model.TimeOfDay, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := model.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NewDocument builds a current-version document from definitions.
func NewDocument(defs []model.ActivityDefinition) Document {
	doc := Document{Version: StorageVersion, Activities: make([]StoredActivity, 0, len(defs))}
	for _, a := range defs {
		doc.Activities = append(doc.Activities, FromDefinition(a))
	}
	return doc
}

// Definitions converts every stored activity.
func (d Document) Definitions() ([]model.ActivityDefinition, error) {
	out := make([]model.ActivityDefinition, 0, len(d.Activities))
	for _, s := range d.Activities {
		a, err := s.ToDefinition()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
