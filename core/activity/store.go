package activity

import (
	"context"
	"sync"
)

// Store persists the activity document.
type Store interface {
	// Load returns an empty current-version document when nothing was saved.
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// MemoryStore keeps the document in memory.
type MemoryStore struct {
	mu  sync.RWMutex
	doc Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: Document{Version: StorageVersion}}
}

func (s *MemoryStore) Load(context.Context) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := s.doc
	doc.Activities = append([]StoredActivity(nil), s.doc.Activities...)
	return doc, nil
}

func (s *MemoryStore) Save(_ context.Context, doc Document) error {
	s.mu.Lock()
	s.doc = doc
	s.doc.Activities = append([]StoredActivity(nil), doc.Activities...)
	s.mu.Unlock()
	return nil
}
