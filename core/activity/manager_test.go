package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/kilianp07/energyadvisor/core/model"
	"github.com/kilianp07/energyadvisor/infra/logger"
)

func newManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	m, err := NewManager(context.Background(), store, logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m, store
}

func TestManagerCRUDPersists(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	var seen [][]model.ActivityDefinition
	m.OnChange(func(defs []model.ActivityDefinition) { seen = append(seen, defs) })

	start := model.MustTimeOfDay("06:30")
	if err := m.Add(ctx, model.ActivityDefinition{ID: "wash", Name: "Washer", DurationMinutes: 90, EarliestStart: &start}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add(ctx, model.ActivityDefinition{ID: "dry", DurationMinutes: 60, Priority: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Update(ctx, model.ActivityDefinition{ID: "dry", DurationMinutes: 45, Priority: 2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := m.Remove(ctx, "wash"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(seen) != 4 {
		t.Fatalf("expected 4 notifications got %d", len(seen))
	}
	doc, _ := store.Load(ctx)
	if doc.Version != StorageVersion || len(doc.Activities) != 1 {
		t.Fatalf("unexpected stored doc %+v", doc)
	}
	if doc.Activities[0].ID != "dry" || doc.Activities[0].DurationMinutes != 45 {
		t.Fatalf("unexpected stored activity %+v", doc.Activities[0])
	}

	reloaded, err := NewManager(ctx, store, logger.NopLogger{})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Get("dry")
	if err != nil || got.Priority != 2 {
		t.Fatalf("reload lost data: %+v %v", got, err)
	}
}

func TestManagerErrors(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	if err := m.Add(ctx, model.ActivityDefinition{ID: "a", DurationMinutes: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add(ctx, model.ActivityDefinition{ID: "a", DurationMinutes: 10}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := m.Update(ctx, model.ActivityDefinition{ID: "b", DurationMinutes: 10}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := m.Remove(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := m.Get("b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := m.Add(ctx, model.ActivityDefinition{ID: "c"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(m.List()) != 1 {
		t.Fatalf("failed operations must not change state")
	}
}

func TestManagerListIsCopy(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	if err := m.Replace(ctx, []model.ActivityDefinition{{ID: "a", DurationMinutes: 10, Metadata: map[string]any{"k": "v"}}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	list := m.List()
	list[0].ID = "x"
	list[0].Metadata["k"] = "changed"
	got, _ := m.Get("a")
	if got.Metadata["k"] != "v" {
		t.Fatalf("manager state leaked through List")
	}
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) Save(context.Context, Document) error { return errors.New("disk full") }

func TestManagerSaveFailureKeepsState(t *testing.T) {
	m, err := NewManager(context.Background(), &failingStore{MemoryStore: NewMemoryStore()}, logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if err := m.Add(context.Background(), model.ActivityDefinition{ID: "a", DurationMinutes: 10}); err == nil {
		t.Fatalf("expected save error")
	}
	if len(m.List()) != 0 {
		t.Fatalf("state changed despite save failure")
	}
}

func TestStoredActivityRoundTrip(t *testing.T) {
	end := model.MustTimeOfDay("22:15:30")
	def := model.ActivityDefinition{ID: "a", Name: "A", DurationMinutes: 30, LatestEnd: &end, Priority: 3, Metadata: map[string]any{"room": "kitchen"}}
	stored := FromDefinition(def)
	if stored.EarliestStart != nil || *stored.LatestEnd != "22:15:30" {
		t.Fatalf("unexpected stored times %+v", stored)
	}
	back, err := stored.ToDefinition()
	if err != nil {
		t.Fatalf("to definition: %v", err)
	}
	if back.LatestEnd == nil || *back.LatestEnd != end || back.Metadata["room"] != "kitchen" {
		t.Fatalf("round trip mismatch %+v", back)
	}
	bad := "25:00"
	stored.EarliestStart = &bad
	if _, err := stored.ToDefinition(); err == nil {
		t.Fatalf("expected invalid time error")
	}
}
