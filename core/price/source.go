package price

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/kilianp07/energyadvisor/core/model"
)

// Source yields the current state of the configured price sensor.
type Source interface {
	Fetch(ctx context.Context) (*SensorState, error)
}

// ChangeNotifier is implemented by sources that push updates. The callback
// runs whenever the sensor's price content changes.
type ChangeNotifier interface {
	OnChange(fn func())
}

// FetchPoints fetches a state from src and extracts its price points.
func FetchPoints(ctx context.Context, src Source) ([]model.PricePoint, error) {
	st, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch price state: %w", err)
	}
	return Extract(st)
}

// FileSource reads the sensor document from a file on every fetch.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) (*SensorState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ExtractionError{Sensor: f.Path, Err: ErrSensorUnavailable}
		}
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return ParseState(data)
}

// StaticSource holds a state in memory. Set notifies registered callbacks
// when the price content differs from the previous state.
type StaticSource struct {
	mu        sync.RWMutex
	state     *SensorState
	listeners []func()
}

func NewStaticSource(st *SensorState) *StaticSource {
	return &StaticSource{state: st}
}

func (s *StaticSource) Fetch(ctx context.Context) (*SensorState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, &ExtractionError{Err: ErrSensorUnavailable}
	}
	return s.state, nil
}

func (s *StaticSource) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *StaticSource) Set(st *SensorState) {
	s.mu.Lock()
	changed := s.state.Fingerprint() != st.Fingerprint()
	s.state = st
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range listeners {
		fn()
	}
}
