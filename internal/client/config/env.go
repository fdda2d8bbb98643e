package config

import (
	"time"

	"github.com/spf13/viper"
)

// parseEnv overlays Config with environment variables:
//
//	ADMAGIC_API_URL (or API_BASE)     base URL of the auth API
//	ADMAGIC_DB_PATH                   SQLite credential file
//	ADMAGIC_REVALIDATE_INTERVAL       seconds between session checks
//	ADMAGIC_REQUEST_TIMEOUT           per-request timeout in seconds
//	ADMAGIC_EPHEMERAL                 true to keep the credential in memory
//
// Unset variables leave the current value alone.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("ADMAGIC")
	v.AutomaticEnv()
	_ = v.BindEnv("api_url", "ADMAGIC_API_URL", "API_BASE")

	if v.IsSet("api_url") {
		cfg.APIBaseURL = v.GetString("api_url")
	}
	if v.IsSet("db_path") {
		cfg.DatabasePath = v.GetString("db_path")
	}
	if v.IsSet("revalidate_interval") {
		cfg.RevalidateInterval = time.Duration(v.GetInt("revalidate_interval")) * time.Second
	}
	if v.IsSet("request_timeout") {
		cfg.RequestTimeout = time.Duration(v.GetInt("request_timeout")) * time.Second
	}
	if v.IsSet("ephemeral") {
		cfg.Ephemeral = v.GetBool("ephemeral")
	}
}
