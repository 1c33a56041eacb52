package config

import (
	"fmt"
	"time"
)

// RefreshConfig sets the periodic replanning interval.
type RefreshConfig struct {
	IntervalMinutes int `json:"interval_minutes"`
}

func (c *RefreshConfig) SetDefaults() {
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 30
	}
}

func (c RefreshConfig) Validate() error {
	if c.IntervalMinutes < 0 {
		return fmt.Errorf("interval_minutes must not be negative")
	}
	return nil
}

func (c RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// StoreConfig selects the activity store.
type StoreConfig struct {
	// Backend is "json" or "sqlite".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "json"
	}
	if c.Path == "" {
		if c.Backend == "sqlite" {
			c.Path = "activities.db"
		} else {
			c.Path = "activities.json"
		}
	}
}

func (c StoreConfig) Validate() error {
	if c.Backend != "json" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}

// PlanLogConfig defines settings for plan history storage and rotation.
type PlanLogConfig struct {
	// Backend selects the log store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

func (c *PlanLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "plans.log"
	}
}

func (c PlanLogConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}

// APIConfig configures the HTTP API. An empty address disables it.
type APIConfig struct {
	Address string `json:"address"`
	// Token, when set, is required as a bearer token on mutating endpoints
	// and the plan history.
	Token string `json:"token"`
}
