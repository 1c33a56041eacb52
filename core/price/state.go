package price

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SensorState is the document published by a price sensor: its state value
// and an attribute map holding raw_today / raw_tomorrow entries.
type SensorState struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed,omitempty"`
}

// ParseState decodes a sensor document. Numbers are kept as json.Number so
// prices keep their exact decimal representation.
func ParseState(data []byte) (*SensorState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var st SensorState
	if err := dec.Decode(&st); err != nil {
		return nil, fmt.Errorf("decode sensor state: %w", err)
	}
	if st.Attributes == nil {
		st.Attributes = map[string]any{}
	}
	return &st, nil
}

// Fingerprint identifies the price content of a state. Two states with the
// same fingerprint plan identically.
func (s *SensorState) Fingerprint() string {
	if s == nil {
		return ""
	}
	b, err := json.Marshal([]any{s.State, s.Attributes[keyToday], s.Attributes[keyTomorrow]})
	if err != nil {
		return ""
	}
	return string(b)
}
