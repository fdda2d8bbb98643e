package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the admagic CLI.
//
// Fields:
//   - APIBaseURL: base URL of the auth API, without the /api/auth prefix.
//   - DatabasePath: SQLite file that keeps the credential between runs.
//   - RevalidateInterval: how often the CLI re-checks the session.
//   - RequestTimeout: upper bound for a single HTTP call.
//   - Ephemeral: keep the credential in memory only.
type Config struct {
	APIBaseURL         string
	DatabasePath       string
	RevalidateInterval time.Duration
	RequestTimeout     time.Duration
	Ephemeral          bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.DatabasePath = "admagic.db"
	c.RevalidateInterval = 60 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.Ephemeral = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects durations that cannot drive a ticker or bound a request.
func (c *Config) Validate() error {
	if c.RevalidateInterval <= 0 {
		return fmt.Errorf("revalidate interval must be positive, got %s", c.RevalidateInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
