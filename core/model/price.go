package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is the energy price for the half-open interval [Start, End).
type PricePoint struct {
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	Price    decimal.Decimal `json:"price"` // price per kWh
	Currency string          `json:"currency"`
}

// DurationMinutes returns the length of the interval in whole minutes.
// Intervals shorter than a minute count as one minute.
func (p PricePoint) DurationMinutes() int {
	m := int(p.End.Sub(p.Start) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}

// Validate checks that the interval is well formed.
func (p PricePoint) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("start and end required")
	}
	if !p.End.After(p.Start) {
		return fmt.Errorf("end must be after start")
	}
	return nil
}
