// Package config defines the process configuration and its loading hooks.
// Defaults come first, then an optional YAML file, then KEIBA_-prefixed
// environment variables.
package config

import (
	"runtime"

	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// WorkerCount sets the number of history-fetch workers.
	WorkerCount int `koanf:"worker_count"`

	// ShardCount configures the in-memory history store sharding.
	ShardCount int `koanf:"shard_count"`

	// Windows are the rolling form-window lengths, in starts. The relative
	// features read the five-start window, so 5 must be present.
	Windows []int `koanf:"windows"`

	// RecentFormDays bounds the jockey/trainer short-form window.
	RecentFormDays int `koanf:"recent_form_days"`

	Output   OutputConfig   `koanf:"output"`
	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`

	// Lookup overrides the built-in reference tables: venues, class ranks,
	// base times, bloodlines. Partial overrides merge over the defaults.
	Lookup *lookup.Tables `koanf:"lookup"`
}

// OutputConfig names the run artifacts.
type OutputConfig struct {
	MatrixPath string `koanf:"matrix_path"`
	ReportPath string `koanf:"report_path"`
}

// PostgresConfig selects the participation-history database. An empty DSN
// keeps the run on the in-memory store.
type PostgresConfig struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table"`
}

// RedisConfig enables the pedigree cache when Addr is set.
type RedisConfig struct {
	Addr       string `koanf:"addr"`
	Password   string `koanf:"password"`
	DB         int    `koanf:"db"`
	TTLMinutes int    `koanf:"ttl_minutes"`
}

// KafkaConfig enables run-report publishing when brokers are set.
type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		WorkerCount:    runtime.NumCPU(),
		ShardCount:     16,
		Windows:        []int{3, 5, 10},
		RecentFormDays: 30,
		Output: OutputConfig{
			MatrixPath: "out/features.csv",
			ReportPath: "out/report.json",
		},
		Redis: RedisConfig{
			TTLMinutes: 360,
		},
		Kafka: KafkaConfig{
			Topic: "feature-runs",
		},
		Lookup: lookup.Defaults(),
	}
}
