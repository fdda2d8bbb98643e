package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/admagic/internal/flagx"
	"github.com/dmitrijs2005/admagic/internal/timex"
)

// JsonConfig is the DTO read from the -c/-config file. Durations use
// timex.Duration, so both "30m" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl"`
	VerificationTTL timex.Duration `json:"verification_ttl"`
	ResetTTL        timex.Duration `json:"reset_ttl"`
	AppURL          string         `json:"app_url"`
	RateLimit       float64        `json:"rate_limit"`
	RateBurst       int            `json:"rate_burst"`
	CleanupInterval timex.Duration `json:"cleanup_interval"`
	LogLevel        string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config. Keys absent from the file keep their current value. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AppURL, c.AppURL)
	setString(&config.LogLevel, c.LogLevel)
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.VerificationTTL.Duration != 0 {
		config.VerificationTTL = c.VerificationTTL.Duration
	}
	if c.ResetTTL.Duration != 0 {
		config.ResetTTL = c.ResetTTL.Duration
	}
	if c.CleanupInterval.Duration != 0 {
		config.CleanupInterval = c.CleanupInterval.Duration
	}
	if c.RateLimit != 0 {
		config.RateLimit = c.RateLimit
	}
	if c.RateBurst != 0 {
		config.RateBurst = c.RateBurst
	}
}
