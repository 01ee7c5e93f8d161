package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 60*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, DevJWTSecret, cfg.Auth.JWTSecret)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8081"}, cfg.CORS.AllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("LOGIN_RATE_PER_SECOND", "0.5")
	t.Setenv("LOGIN_RATE_BURST", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.InDelta(t, 0.5, cfg.RateLimit.LoginPerSecond, 0.0001)
	assert.Equal(t, 5, cfg.RateLimit.LoginBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBcryptCostOutOfRange(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "3")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH_BCRYPT_COST", "10")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}
