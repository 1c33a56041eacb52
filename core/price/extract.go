package price

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/energyadvisor/core/model"
)

const (
	keyToday    = "raw_today"
	keyTomorrow = "raw_tomorrow"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Extract reads raw_today and raw_tomorrow from st and returns the valid
// entries sorted by start. Malformed entries are skipped.
func Extract(st *SensorState) ([]model.PricePoint, error) {
	if st == nil {
		return nil, &ExtractionError{Err: ErrSensorUnavailable}
	}
	raw := collectEntries(st.Attributes)
	if len(raw) == 0 {
		return nil, &ExtractionError{Sensor: st.EntityID, Err: ErrNoRawData}
	}
	currency := currencyOf(st.Attributes)

	points := make([]model.PricePoint, 0, len(raw))
	for _, entry := range raw {
		p, ok := parseEntry(entry, currency)
		if !ok {
			continue
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, &ExtractionError{Sensor: st.EntityID, Err: ErrNoValidEntries}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Start.Before(points[j].Start) })
	return points, nil
}

func collectEntries(attrs map[string]any) []map[string]any {
	var out []map[string]any
	for _, key := range []string{keyToday, keyTomorrow} {
		list, ok := attrs[key].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := m["start"]; !ok {
				continue
			}
			if _, ok := m["end"]; !ok {
				continue
			}
			if _, ok := m["value"]; !ok {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

func currencyOf(attrs map[string]any) string {
	if c, ok := attrs["currency"].(string); ok && c != "" {
		return c
	}
	if c, ok := attrs["unit_of_measurement"].(string); ok {
		return c
	}
	return ""
}

func parseEntry(m map[string]any, currency string) (model.PricePoint, bool) {
	start, err := parseTime(m["start"])
	if err != nil {
		return model.PricePoint{}, false
	}
	end, err := parseTime(m["end"])
	if err != nil {
		return model.PricePoint{}, false
	}
	if !end.After(start) {
		return model.PricePoint{}, false
	}
	value, err := parseDecimal(m["value"])
	if err != nil {
		return model.PricePoint{}, false
	}
	return model.PricePoint{Start: start, End: end, Price: value, Currency: currency}, true
}

func parseTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp is %T", v)
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	default:
		return decimal.Zero, fmt.Errorf("value is %T", v)
	}
}
