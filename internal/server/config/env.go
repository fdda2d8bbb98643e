package config

import (
	"github.com/spf13/viper"
)

// envConfig mirrors the ADMAGIC_* variables. Durations accept Go syntax
// ("30m", "24h").
type envConfig struct {
	HTTPAddr        string  `mapstructure:"HTTP_ADDR"`
	DatabaseDSN     string  `mapstructure:"DATABASE_DSN"`
	SecretKey       string  `mapstructure:"SECRET_KEY"`
	AccessTokenTTL  string  `mapstructure:"ACCESS_TOKEN_TTL"`
	VerificationTTL string  `mapstructure:"VERIFICATION_TTL"`
	ResetTTL        string  `mapstructure:"RESET_TTL"`
	AppURL          string  `mapstructure:"APP_URL"`
	RateLimit       float64 `mapstructure:"RATE_LIMIT"`
	RateBurst       int     `mapstructure:"RATE_BURST"`
	CleanupInterval string  `mapstructure:"CLEANUP_INTERVAL"`
	LogLevel        string  `mapstructure:"LOG_LEVEL"`
}

var envKeys = []string{
	"HTTP_ADDR", "DATABASE_DSN", "SECRET_KEY", "ACCESS_TOKEN_TTL", "VERIFICATION_TTL",
	"RESET_TTL", "APP_URL", "RATE_LIMIT", "RATE_BURST", "CLEANUP_INTERVAL", "LOG_LEVEL",
}

// parseEnv overlays Config with ADMAGIC_-prefixed environment variables.
// Unset variables keep the current value; malformed ones panic, the same
// as malformed JSON or flags.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("ADMAGIC")
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	var ec envConfig
	if err := v.Unmarshal(&ec); err != nil {
		panic(err)
	}

	setString(&cfg.HTTPAddr, ec.HTTPAddr)
	setString(&cfg.DatabaseDSN, ec.DatabaseDSN)
	setString(&cfg.SecretKey, ec.SecretKey)
	setString(&cfg.AppURL, ec.AppURL)
	setString(&cfg.LogLevel, ec.LogLevel)
	setDuration(&cfg.AccessTokenTTL, ec.AccessTokenTTL)
	setDuration(&cfg.VerificationTTL, ec.VerificationTTL)
	setDuration(&cfg.ResetTTL, ec.ResetTTL)
	setDuration(&cfg.CleanupInterval, ec.CleanupInterval)
	if v.IsSet("RATE_LIMIT") {
		cfg.RateLimit = ec.RateLimit
	}
	if v.IsSet("RATE_BURST") {
		cfg.RateBurst = ec.RateBurst
	}
}
