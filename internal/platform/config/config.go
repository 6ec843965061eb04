// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (API client, session store, poller)
    via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the client is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the TopLivres client.
type Config struct {

	// Remote bookstore API
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:5000"`

	// StubAddr is the listen address of the local stub API server.
	StubAddr string `env:"STUB_ADDR" envDefault:":5000"`

	// CSRFToken is embedded into every loaded document. In production the
	// server renders it into the page; against the stub it is exported by
	// the stubd process at startup.
	CSRFToken string `env:"CSRF_TOKEN"`

	// StatePath is the filesystem path of the persisted session state file
	// (the client-side analogue of the browser's local storage).
	StatePath string `env:"STATE_PATH" envDefault:".toplivres/state.json"`

	// PollInterval is the period of the background auto-refresh poller.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`

	// Language selects the UI string table. Only "fr" ships today.
	Language string `env:"LANGUAGE" envDefault:"fr"`

	// Environment & diagnostics
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("config: POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}

	if cfg.Language != "fr" {
		return nil, fmt.Errorf("config: unsupported LANGUAGE %q, only \"fr\" ships today", cfg.Language)
	}

	return cfg, nil
}

// IsDevelopment reports whether the client is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the client is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
