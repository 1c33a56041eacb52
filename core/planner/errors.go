package planner

import "errors"

// Failure kinds that abort a planning run. Use errors.Is to test for them.
var (
	ErrNoPriceData            = errors.New("no price data")
	ErrInvalidSlotResolution  = errors.New("invalid slot resolution")
	ErrIncompatibleResolution = errors.New("incompatible slot resolution")
	ErrAggregationEmpty       = errors.New("no data to aggregate")
)

// Error describes why a planning run produced no solution.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "planning: " + e.Kind.Error()
	}
	return "planning: " + e.Kind.Error() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func planningError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Kind returns a short label for err, suitable for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoPriceData):
		return "no_price_data"
	case errors.Is(err, ErrInvalidSlotResolution):
		return "invalid_slot_resolution"
	case errors.Is(err, ErrIncompatibleResolution):
		return "incompatible_resolution"
	case errors.Is(err, ErrAggregationEmpty):
		return "aggregation_empty"
	default:
		return "other"
	}
}
