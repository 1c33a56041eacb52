package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/energyadvisor/core/factory"
	"github.com/kilianp07/energyadvisor/core/metrics"
	"github.com/kilianp07/energyadvisor/infra/mqtt"
)

type Config struct {
	Planner PlannerConfig  `json:"planner"`
	Price   PriceConfig    `json:"price"`
	Refresh RefreshConfig  `json:"refresh"`
	Store   StoreConfig    `json:"store"`
	PlanLog PlanLogConfig  `json:"plan_log"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Metrics metrics.Config `json:"metrics"`
	API     APIConfig      `json:"api"`
	Sentry  SentryConfig   `json:"sentry"`
}

// Load reads a YAML or JSON file and applies K_ prefixed environment
// overrides, e.g. K_PLANNER__SLOT_MINUTES=30.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section. MQTT defaults only
// apply when a broker is configured.
func (c *Config) SetDefaults() {
	c.Planner.SetDefaults()
	c.Price.SetDefaults()
	c.Refresh.SetDefaults()
	c.Store.SetDefaults()
	c.PlanLog.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
	if len(c.Metrics.Sinks) == 0 {
		c.Metrics.Sinks = append(c.Metrics.Sinks, factory.ModuleConfig{Type: "nop"})
	}
}

func (c Config) Validate() error {
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if err := c.Price.Validate(); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	if err := c.Refresh.Validate(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.PlanLog.Validate(); err != nil {
		return fmt.Errorf("plan_log: %w", err)
	}
	if c.Price.Mode == PriceModeMQTT && c.MQTT.Broker == "" {
		return fmt.Errorf("price: mode mqtt requires mqtt.broker")
	}
	if c.MQTT.Broker != "" {
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	return nil
}
