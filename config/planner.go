package config

import (
	"fmt"

	"github.com/kilianp07/energyadvisor/core/model"
)

// PlannerConfig is the planning policy as written in the config file.
// Window bounds are "HH:MM" or "HH:MM:SS" strings.
type PlannerConfig struct {
	PriceSensor string `json:"price_sensor"`
	SlotMinutes int    `json:"slot_minutes"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	Timezone    string `json:"timezone"`
}

func (c *PlannerConfig) SetDefaults() {
	if c.SlotMinutes == 0 {
		c.SlotMinutes = model.DefaultSlotMinutes
	}
	if c.WindowStart == "" {
		c.WindowStart = model.DefaultWindowStart.Short()
	}
	if c.WindowEnd == "" {
		c.WindowEnd = model.DefaultWindowEnd.Short()
	}
}

// Validate parses the window bounds. Slot resolution is checked against the
// price data at planning time, so a non-positive value is accepted here and
// surfaces as a planning error.
func (c PlannerConfig) Validate() error {
	_, err := c.Model()
	return err
}

// Model converts the section into the planner's policy type.
func (c PlannerConfig) Model() (model.PlannerConfig, error) {
	start, err := model.ParseTimeOfDay(c.WindowStart)
	if err != nil {
		return model.PlannerConfig{}, fmt.Errorf("window_start: %w", err)
	}
	end, err := model.ParseTimeOfDay(c.WindowEnd)
	if err != nil {
		return model.PlannerConfig{}, fmt.Errorf("window_end: %w", err)
	}
	return model.PlannerConfig{
		PriceSensor: c.PriceSensor,
		SlotMinutes: c.SlotMinutes,
		WindowStart: start,
		WindowEnd:   end,
		Timezone:    c.Timezone,
	}, nil
}

// PlannerConfigFromModel renders p back with HH:MM window bounds.
func PlannerConfigFromModel(p model.PlannerConfig) PlannerConfig {
	return PlannerConfig{
		PriceSensor: p.PriceSensor,
		SlotMinutes: p.SlotMinutes,
		WindowStart: p.WindowStart.Short(),
		WindowEnd:   p.WindowEnd.Short(),
		Timezone:    p.Timezone,
	}
}
