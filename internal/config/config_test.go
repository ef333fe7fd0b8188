package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for the test's duration.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, "storefront", cfg.PostgresDB)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 168, cfg.CartTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Empty(t, cfg.MailAPIEndpoint)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, 5, cfg.ChargeRPS)
	assert.Equal(t, 10, cfg.ChargeBurst)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_HTTPPortTooLarge(t *testing.T) {
	t.Setenv("HTTP_PORT", "99999")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidCartTTL(t *testing.T) {
	t.Setenv("CART_TTL_HOURS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cart TTL")
}

func TestLoad_InvalidChargeRateLimit(t *testing.T) {
	t.Setenv("CHARGE_RATE_LIMIT_RPS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "charge rate limit")
}

func TestLoad_CustomValues(t *testing.T) {
	setEnvs(t, map[string]string{
		"HTTP_PORT":      "9090",
		"CART_TTL_HOURS": "24",
		"KAFKA_BROKERS":  "broker-1:9092,broker-2:9092",
		"JWT_SECRET":     "s3cret",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 24, cfg.CartTTL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}
