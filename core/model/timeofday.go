package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS". Seconds default to zero.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM[:SS]", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
		vals[i] = v
	}
	t := TimeOfDay{Hour: vals[0], Minute: vals[1], Second: vals[2]}
	if err := t.Validate(); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// MustTimeOfDay is like ParseTimeOfDay but panics on error.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate checks the clock fields are in range.
func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("hour out of range")
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("minute out of range")
	}
	if t.Second < 0 || t.Second > 59 {
		return fmt.Errorf("second out of range")
	}
	return nil
}

// String renders the time as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Short renders the time as HH:MM, dropping seconds.
func (t TimeOfDay) Short() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant at this time of day on ref's calendar date, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, t.Second, 0, ref.Location())
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
