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

	"github.com/kilianp07/bnbsched/core/metrics"
	"github.com/kilianp07/bnbsched/core/runlog"
	"github.com/kilianp07/bnbsched/infra/logger"
	"github.com/kilianp07/bnbsched/infra/mqtt"
)

// EnvPrefix marks environment variables that override file settings.
// Nested keys are separated by a double underscore: BNB_SOLVER__MODE.
const EnvPrefix = "BNB_"

type Config struct {
	Solver  SolverConfig   `json:"solver"`
	Logging logger.Options `json:"logging"`
	History runlog.Config  `json:"history"`
	Metrics metrics.Config `json:"metrics"`
	MQTT    mqtt.Config    `json:"mqtt"`
}

// Load reads the configuration file at path, if any, and applies environment
// overrides. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
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
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
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

func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.History.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := validateLogging(c.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.History.Enabled {
		if err := c.History.Validate(); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}

func validateLogging(o logger.Options) error {
	switch o.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown format %q", o.Format)
	}
	switch strings.ToLower(o.Level) {
	case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("unknown level %q", o.Level)
	}
	return nil
}
