// Package config loads projector configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-driven setting of the projector CLI.
// Scenario and output paths come from flags instead; they change per run.
type Config struct {
	LogLevel  string `env:"PROJECTOR_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"PROJECTOR_LOG_FORMAT" envDefault:"text"`

	// MetricsListen, when non-empty, is the address the /metrics endpoint
	// is served on for the duration of the run.
	MetricsListen string `env:"PROJECTOR_METRICS_LISTEN"`

	// StorePath, when non-empty, is the SQLite file projection runs are
	// persisted to.
	StorePath string `env:"PROJECTOR_STORE_PATH"`

	TracingEnabled     bool    `env:"PROJECTOR_TRACING_ENABLED" envDefault:"false"`
	TracingExporter    string  `env:"PROJECTOR_TRACING_EXPORTER" envDefault:"stdout"`
	TracingEndpoint    string  `env:"PROJECTOR_OTLP_ENDPOINT"`
	TracingSampleRatio float64 `env:"PROJECTOR_TRACING_SAMPLE_RATIO" envDefault:"1"`
}

// FromEnv parses configuration from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}
