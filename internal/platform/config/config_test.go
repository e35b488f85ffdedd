package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("DEFAULT_CURRENCY", "PHP")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "PHP", cfg.DefaultCurrency)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, insecureDefaultJWTSecret, cfg.JWTSecret)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"PGSQL_URL":            "postgres://localhost/neuron",
		"DEFAULT_CURRENCY":     "usd",
		"IDEMPOTENCY_TTL":      "90m",
		"CORS_ALLOWED_ORIGINS": "https://ops.example.com, https://admin.example.com",
		"JWT_SECRET":           "s3cret",
		"REDIS_ADDR":           "localhost:6379",
		"REDIS_DB":             2,
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/neuron", cfg.DatabaseURL)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 90*time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, []string{"https://ops.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestFromViper_InvalidCurrency(t *testing.T) {
	_, err := fromViper(newTestViper(map[string]any{"DEFAULT_CURRENCY": "XYZW"}))
	assert.Error(t, err)
}

func TestFromViper_ProductionRequiresSecret(t *testing.T) {
	_, err := fromViper(newTestViper(map[string]any{"IS_PRODUCTION": true}))
	assert.Error(t, err)
}

func TestFromViper_BadTTLFallsBack(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{"IDEMPOTENCY_TTL": "soon"}))
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}
