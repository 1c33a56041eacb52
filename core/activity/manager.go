package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kilianp07/energyadvisor/core/logger"
	"github.com/kilianp07/energyadvisor/core/model"
)

var (
	ErrNotFound    = errors.New("activity not found")
	ErrDuplicateID = errors.New("duplicate activity id")
)

// Manager owns the tracked activities. Every change is persisted before it
// becomes visible and then announced to the registered listeners.
type Manager struct {
	mu         sync.RWMutex
	store      Store
	log        logger.Logger
	activities []model.ActivityDefinition
	listeners  []func([]model.ActivityDefinition)
}

// NewManager loads the persisted activities from store.
func NewManager(ctx context.Context, store Store, log logger.Logger) (*Manager, error) {
	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	defs, err := doc.Definitions()
	if err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	log.Infof("loaded %d activities (store version %d)", len(defs), doc.Version)
	return &Manager{store: store, log: log, activities: defs}, nil
}

// OnChange registers fn to receive a copy of the activities after each change.
func (m *Manager) OnChange(fn func([]model.ActivityDefinition)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// List returns a copy of the tracked activities in insertion order.
func (m *Manager) List() []model.ActivityDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.CloneActivities(m.activities)
}

func (m *Manager) Get(id string) (model.ActivityDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.index(id)
	if i < 0 {
		return model.ActivityDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.activities[i].Clone(), nil
}

func (m *Manager) Add(ctx context.Context, a model.ActivityDefinition) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return m.mutate(ctx, func(cur []model.ActivityDefinition) ([]model.ActivityDefinition, error) {
		if m.index(a.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
		}
		return append(cur, a.Clone()), nil
	})
}

func (m *Manager) Update(ctx context.Context, a model.ActivityDefinition) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return m.mutate(ctx, func(cur []model.ActivityDefinition) ([]model.ActivityDefinition, error) {
		i := m.index(a.ID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, a.ID)
		}
		cur[i] = a.Clone()
		return cur, nil
	})
}

func (m *Manager) Remove(ctx context.Context, id string) error {
	return m.mutate(ctx, func(cur []model.ActivityDefinition) ([]model.ActivityDefinition, error) {
		i := m.index(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return append(cur[:i], cur[i+1:]...), nil
	})
}

// Replace swaps the whole set. Duplicate ids are accepted here; the planner
// treats each entry independently.
func (m *Manager) Replace(ctx context.Context, defs []model.ActivityDefinition) error {
	for _, a := range defs {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return m.mutate(ctx, func([]model.ActivityDefinition) ([]model.ActivityDefinition, error) {
		return model.CloneActivities(defs), nil
	})
}

// index must be called with m.mu held.
func (m *Manager) index(id string) int {
	for i, a := range m.activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) mutate(ctx context.Context, fn func([]model.ActivityDefinition) ([]model.ActivityDefinition, error)) error {
	m.mu.Lock()
	next, err := fn(model.CloneActivities(m.activities))
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.store.Save(ctx, NewDocument(next)); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("save activities: %w", err)
	}
	m.activities = next
	snapshot := model.CloneActivities(next)
	listeners := append([]func([]model.ActivityDefinition){}, m.listeners...)
	m.mu.Unlock()

	m.log.Debugf("activities updated: %d tracked", len(snapshot))
	for _, fn := range listeners {
		fn(model.CloneActivities(snapshot))
	}
	return nil
}
