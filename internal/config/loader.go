package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvConfigPath names the environment variable pointing at the YAML file.
const EnvConfigPath = "KEIBA_CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KEIBA_CONFIG is set
//  3. env (prefix KEIBA_, double underscore for nesting:
//     KEIBA_POSTGRES__DSN -> postgres.dsn)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("KEIBA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "keiba_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.ShardCount <= 0 {
		return fmt.Errorf("%w: shard_count must be positive, got %d", ErrInvalidConfig, c.ShardCount)
	}
	if len(c.Windows) == 0 {
		return fmt.Errorf("%w: windows must not be empty", ErrInvalidConfig)
	}
	hasFive := false
	for _, n := range c.Windows {
		if n <= 0 {
			return fmt.Errorf("%w: window lengths must be positive, got %d", ErrInvalidConfig, n)
		}
		if n == 5 {
			hasFive = true
		}
	}
	// The field-relative features consume the five-start form window.
	if !hasFive {
		return fmt.Errorf("%w: windows must include 5", ErrInvalidConfig)
	}
	if c.RecentFormDays <= 0 {
		return fmt.Errorf("%w: recent_form_days must be positive, got %d", ErrInvalidConfig, c.RecentFormDays)
	}
	if c.Output.MatrixPath == "" {
		return fmt.Errorf("%w: output.matrix_path must not be empty", ErrInvalidConfig)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("%w: kafka.topic must be set when brokers are configured", ErrInvalidConfig)
	}
	return nil
}
