package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/energyadvisor/auth"
)

const (
	PriceModeMQTT = "mqtt"
	PriceModeHTTP = "http"
	PriceModeFile = "file"
)

// PriceConfig selects where the price sensor document comes from.
type PriceConfig struct {
	// Mode is one of "mqtt", "http" or "file".
	Mode string `json:"mode"`
	// Topic overrides mqtt.price_topic in mqtt mode.
	Topic string `json:"topic"`
	URL   string `json:"url"`
	// Format of the HTTP payload: "sensor" or "wholesale".
	Format string `json:"format"`
	// Token is a static bearer token for the HTTP feed.
	Token               string    `json:"token"`
	Auth                auth.Conf `json:"auth"`
	PollIntervalSeconds int       `json:"poll_interval_seconds"`
	Path                string    `json:"path"`
	FetchTimeoutSeconds int       `json:"fetch_timeout_seconds"`
}

func (c *PriceConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = PriceModeFile
	}
	if c.Format == "" {
		c.Format = "sensor"
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = 10
	}
	if c.Mode == PriceModeHTTP && c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = 300
	}
}

func (c PriceConfig) Validate() error {
	switch c.Mode {
	case PriceModeMQTT:
	case PriceModeHTTP:
		if c.URL == "" {
			return fmt.Errorf("url is required in http mode")
		}
	case PriceModeFile:
		if c.Path == "" {
			return fmt.Errorf("path is required in file mode")
		}
	default:
		return fmt.Errorf("unknown mode %s", c.Mode)
	}
	return nil
}

func (c PriceConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c PriceConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
