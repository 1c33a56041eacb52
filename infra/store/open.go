package store

import (
	"fmt"
	"io"

	"github.com/kilianp07/energyadvisor/core/activity"
)

// Open returns the store for backend ("json" or "sqlite") and a closer
// for its resources.
func Open(backend, path string) (activity.Store, io.Closer, error) {
	switch backend {
	case "", "json":
		s, err := NewJSONStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case "sqlite":
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown activity store backend %s", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
