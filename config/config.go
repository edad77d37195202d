// Package config loads the service configuration from a YAML or JSON file
// with K_ prefixed environment overrides.
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

	"github.com/kilianp07/docksched/core/metrics"
	"github.com/kilianp07/docksched/infra/mqtt"
)

type Config struct {
	Schedule ScheduleConfig `json:"schedule"`
	Source   SourceConfig   `json:"source"`
	Persist  PersistConfig  `json:"persist"`
	Audit    AuditConfig    `json:"audit"`
	Metrics  metrics.Config `json:"metrics"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Sentry   SentryConfig   `json:"sentry"`
	API      APIConfig      `json:"api"`
}

// Load reads path, applies environment overrides such as
// K_SCHEDULE__DEFAULT_DURATION_MINUTES=60, fills defaults and validates.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
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

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Schedule.SetDefaults()
	c.Persist.SetDefaults()
	c.Audit.SetDefaults()
	c.API.SetDefaults()
	c.Sentry.SetDefaults()
	if c.MQTT.BoardTopicPrefix == "" {
		c.MQTT.BoardTopicPrefix = "docksched/board"
	}
	if c.Metrics.PrometheusPort == "" {
		c.Metrics.PrometheusPort = "9100"
	}
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Persist.Validate(); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
