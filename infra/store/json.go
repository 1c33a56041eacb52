package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kilianp07/energyadvisor/core/activity"
)

// JSONStore keeps the activity document in a single JSON file. Writes go
// through a temporary file and a rename so readers never see a partial
// document.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(path string) (*JSONStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) Load(ctx context.Context) (activity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return activity.NewDocument(nil), nil
	}
	if err != nil {
		return activity.Document{}, err
	}
	var doc activity.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return activity.Document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc.Version > activity.StorageVersion {
		return activity.Document{}, fmt.Errorf("%s: unsupported version %d", s.path, doc.Version)
	}
	doc.Version = activity.StorageVersion
	return doc, nil
}

func (s *JSONStore) Save(ctx context.Context, doc activity.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
