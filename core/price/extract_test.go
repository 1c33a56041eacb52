package price

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const sampleState = `{
  "entity_id": "sensor.nordpool",
  "state": "0.10",
  "attributes": {
    "currency": "SEK",
    "raw_tomorrow": [
      {"start": "2025-01-02T00:00:00+00:00", "end": "2025-01-02T00:15:00+00:00", "value": 0.30}
    ],
    "raw_today": [
      {"start": "2025-01-01T00:15:00+00:00", "end": "2025-01-01T00:30:00+00:00", "value": "0.20"},
      {"start": "2025-01-01T00:00:00+00:00", "end": "2025-01-01T00:15:00+00:00", "value": 0.10},
      {"start": "not a time", "end": "2025-01-01T00:45:00+00:00", "value": 1},
      {"start": "2025-01-01T01:00:00+00:00", "value": 1},
      {"start": "2025-01-01T02:00:00+00:00", "end": "2025-01-01T02:00:00+00:00", "value": 1},
      "garbage"
    ]
  }
}`

func TestExtractSortsAndSkipsMalformed(t *testing.T) {
	st, err := ParseState([]byte(sampleState))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	points, err := Extract(st)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points got %d", len(points))
	}
	want := []string{"0.1", "0.2", "0.3"}
	for i, p := range points {
		if !p.Price.Equal(decimal.RequireFromString(want[i])) {
			t.Fatalf("point %d: expected %s got %s", i, want[i], p.Price)
		}
		if p.Currency != "SEK" {
			t.Fatalf("point %d: currency %q", i, p.Currency)
		}
		if p.DurationMinutes() != 15 {
			t.Fatalf("point %d: duration %d", i, p.DurationMinutes())
		}
	}
	if !points[0].Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first start %v", points[0].Start)
	}
}

func TestExtractCurrencyFallback(t *testing.T) {
	st := &SensorState{Attributes: map[string]any{
		"unit_of_measurement": "EUR/kWh",
		"raw_today": []any{map[string]any{
			"start": "2025-01-01T00:00:00Z", "end": "2025-01-01T01:00:00Z", "value": 0.5,
		}},
	}}
	points, err := Extract(st)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if points[0].Currency != "EUR/kWh" {
		t.Fatalf("expected unit fallback, got %q", points[0].Currency)
	}
}

func TestExtractErrors(t *testing.T) {
	if _, err := Extract(nil); !errors.Is(err, ErrSensorUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if _, err := Extract(&SensorState{EntityID: "sensor.x", Attributes: map[string]any{}}); !errors.Is(err, ErrNoRawData) {
		t.Fatalf("expected no raw data, got %v", err)
	}
	bad := &SensorState{Attributes: map[string]any{"raw_today": []any{
		map[string]any{"start": "x", "end": "y", "value": 1},
	}}}
	_, err := Extract(bad)
	if !errors.Is(err, ErrNoValidEntries) {
		t.Fatalf("expected no valid entries, got %v", err)
	}
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("expected *ExtractionError, got %T", err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.json")
	if err := os.WriteFile(path, []byte(sampleState), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	points, err := FetchPoints(context.Background(), FileSource{Path: path})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points got %d", len(points))
	}
	_, err = FileSource{Path: filepath.Join(dir, "missing.json")}.Fetch(context.Background())
	if !errors.Is(err, ErrSensorUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestStaticSourceNotifiesOnChange(t *testing.T) {
	st, err := ParseState([]byte(sampleState))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	src := NewStaticSource(nil)
	calls := 0
	src.OnChange(func() { calls++ })
	src.Set(st)
	src.Set(st)
	if calls != 1 {
		t.Fatalf("expected 1 notification got %d", calls)
	}
	if _, err := src.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
}
