package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("ADMAGIC_API_URL", "https://api.example.com")
	t.Setenv("ADMAGIC_DB_PATH", "/var/lib/admagic.db")
	t.Setenv("ADMAGIC_REVALIDATE_INTERVAL", "15")
	t.Setenv("ADMAGIC_REQUEST_TIMEOUT", "3")
	t.Setenv("ADMAGIC_EPHEMERAL", "true")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, Config{
		APIBaseURL:         "https://api.example.com",
		DatabasePath:       "/var/lib/admagic.db",
		RevalidateInterval: 15 * time.Second,
		RequestTimeout:     3 * time.Second,
		Ephemeral:          true,
	}, cfg)
}

func TestParseEnv_APIBaseFallback(t *testing.T) {
	t.Setenv("API_BASE", "http://legacy:8000")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, "http://legacy:8000", cfg.APIBaseURL)
}

func TestParseEnv_UnsetLeavesValues(t *testing.T) {
	cfg := Config{APIBaseURL: "http://keep", RevalidateInterval: time.Minute}
	parseEnv(&cfg)

	assert.Equal(t, "http://keep", cfg.APIBaseURL)
	assert.Equal(t, time.Minute, cfg.RevalidateInterval)
}
