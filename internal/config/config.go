// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"APP_PORT" envDefault:"8080"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	PoolMaxCons int32  `env:"DB_POOL_MAX_CONNS" envDefault:"10"`
	PoolMinCons int32  `env:"DB_POOL_MIN_CONNS" envDefault:"2"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CatalogURL   string `env:"CATALOG_URL,required"`
	FleetURL     string `env:"FLEET_URL,required"`
	InvoicingURL string `env:"INVOICING_URL,required"`

	// How many times an exit is retried after losing a lot to a
	// concurrent exit before the shortage is reported.
	AllocationRetries int `env:"ALLOCATION_RETRIES" envDefault:"3"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
