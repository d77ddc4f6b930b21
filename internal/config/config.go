// Package config loads gatekeeper configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// Config is the top-level gatekeeper configuration.
type Config struct {
	// Checks overrides the auto-detected registry when non-empty.
	Checks []CheckConfig `yaml:"checks"`

	// BreakerThreshold is the consecutive blocked decisions that trip the
	// circuit breaker (default: 3).
	BreakerThreshold int `yaml:"breaker_threshold"`

	// Workers caps concurrent check execution within one gate run (default: 2).
	Workers int `yaml:"workers"`

	// DBPath is the SQLite database location (default: .gatekeeper/gate.db).
	DBPath string `yaml:"db_path"`
}

// CheckConfig is one check entry in the YAML config file. This is converted
// to a types.CheckDescriptor for internal use.
type CheckConfig struct {
	ID       string   `yaml:"id"`
	Priority int      `yaml:"priority"`
	Class    string   `yaml:"class"`
	Timeout  string   `yaml:"timeout,omitempty"` // e.g. "120s", "5m"
	Command  []string `yaml:"command,omitempty"`

	// RetryOnError allows one retry with backoff on tooling errors. Only set
	// this for idempotent checks.
	RetryOnError bool `yaml:"retry_on_error,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BreakerThreshold: 3,
		Workers:          2,
		DBPath:           ".gatekeeper/gate.db",
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if cfg.BreakerThreshold < 1 {
		return nil, fmt.Errorf("breaker_threshold must be positive (got %d)", cfg.BreakerThreshold)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be positive (got %d)", cfg.Workers)
	}

	return applyEnv(cfg)
}

// applyEnv applies GATEKEEPER_* environment variable overrides.
//
// Supported variables:
// - GATEKEEPER_BREAKER_THRESHOLD: consecutive failures before tripping
// - GATEKEEPER_WORKERS: concurrent check worker limit
// - GATEKEEPER_DB: SQLite database path
func applyEnv(cfg *Config) (*Config, error) {
	if val := os.Getenv("GATEKEEPER_BREAKER_THRESHOLD"); val != "" {
		threshold, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid GATEKEEPER_BREAKER_THRESHOLD: %w", err)
		}
		if threshold < 1 {
			return nil, fmt.Errorf("GATEKEEPER_BREAKER_THRESHOLD must be positive (got %d)", threshold)
		}
		cfg.BreakerThreshold = threshold
	}

	if val := os.Getenv("GATEKEEPER_WORKERS"); val != "" {
		workers, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid GATEKEEPER_WORKERS: %w", err)
		}
		if workers < 1 {
			return nil, fmt.Errorf("GATEKEEPER_WORKERS must be positive (got %d)", workers)
		}
		cfg.Workers = workers
	}

	if val := os.Getenv("GATEKEEPER_DB"); val != "" {
		cfg.DBPath = val
	}

	return cfg, nil
}

// Descriptors converts the configured checks to descriptors. Returns nil
// when no checks are configured, signalling callers to auto-detect.
func (c *Config) Descriptors() ([]types.CheckDescriptor, error) {
	if len(c.Checks) == 0 {
		return nil, nil
	}

	descriptors := make([]types.CheckDescriptor, 0, len(c.Checks))
	for _, check := range c.Checks {
		d := types.CheckDescriptor{
			ID:           check.ID,
			Priority:     check.Priority,
			Class:        types.BlockingClass(check.Class),
			Command:      check.Command,
			RetryOnError: check.RetryOnError,
		}

		if check.Timeout != "" {
			timeout, err := time.ParseDuration(check.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout for check %s: %w", check.ID, err)
			}
			d.Timeout = timeout
		}

		if err := d.Validate(); err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}

	return descriptors, nil
}
