package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("ADMAGIC_HTTP_ADDR", ":9999")
	t.Setenv("ADMAGIC_DATABASE_DSN", "postgres://env")
	t.Setenv("ADMAGIC_SECRET_KEY", "env-secret")
	t.Setenv("ADMAGIC_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("ADMAGIC_VERIFICATION_TTL", "48h")
	t.Setenv("ADMAGIC_RESET_TTL", "30m")
	t.Setenv("ADMAGIC_APP_URL", "https://app.example.com")
	t.Setenv("ADMAGIC_RATE_LIMIT", "2.5")
	t.Setenv("ADMAGIC_RATE_BURST", "4")
	t.Setenv("ADMAGIC_CLEANUP_INTERVAL", "1m")
	t.Setenv("ADMAGIC_LOG_LEVEL", "debug")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, Config{
		HTTPAddr:        ":9999",
		DatabaseDSN:     "postgres://env",
		SecretKey:       "env-secret",
		AccessTokenTTL:  15 * time.Minute,
		VerificationTTL: 48 * time.Hour,
		ResetTTL:        30 * time.Minute,
		AppURL:          "https://app.example.com",
		RateLimit:       2.5,
		RateBurst:       4,
		CleanupInterval: time.Minute,
		LogLevel:        "debug",
	}, c)
}

func TestParseEnv_UnsetKeepsValues(t *testing.T) {
	var c Config
	c.LoadDefaults()
	want := c

	parseEnv(&c)

	assert.Equal(t, want, c)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("ADMAGIC_RESET_TTL", "soon")

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
