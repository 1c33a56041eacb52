package price

import "errors"

var (
	ErrSensorUnavailable = errors.New("sensor unavailable")
	ErrNoRawData         = errors.New("price sensor does not expose raw price data")
	ErrNoValidEntries    = errors.New("no valid entries extracted from price sensor")
)

// ExtractionError reports why a sensor document yielded no price points.
type ExtractionError struct {
	Sensor string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Sensor == "" {
		return "price extraction: " + e.Err.Error()
	}
	return "price extraction " + e.Sensor + ": " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }
