package model

// Default planning policy.
const (
	DefaultSlotMinutes = 60
)

var (
	DefaultWindowStart = TimeOfDay{Hour: 0, Minute: 0}
	DefaultWindowEnd   = TimeOfDay{Hour: 23, Minute: 59}
)

// PlannerConfig is the global scheduling policy.
type PlannerConfig struct {
	// PriceSensor identifies the upstream price feed. The planner does not use it.
	PriceSensor string
	SlotMinutes int
	WindowStart TimeOfDay
	WindowEnd   TimeOfDay
	// Timezone is informational; all arithmetic uses the locations carried by
	// the price timestamps.
	Timezone string
}

// DefaultPlannerConfig returns the policy used when nothing is configured.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		SlotMinutes: DefaultSlotMinutes,
		WindowStart: DefaultWindowStart,
		WindowEnd:   DefaultWindowEnd,
	}
}
