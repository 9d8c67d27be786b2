package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUDIT_LOG_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, devAuditSecret, cfg.AuditSecret)
	assert.Equal(t, defaultTokenTTL, cfg.TokenTTL)
	assert.Equal(t, defaultIdempotencyTTL, cfg.IdempotencyTTL)
}

func TestLoadProductionRequiresBackends(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/kale")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUDIT_LOG_SECRET", "audit-s3cret")

	_, err := Load()
	require.ErrorContains(t, err, "REDIS_URL")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("AUTH_DISABLED", "true")
	_, err = Load()
	require.ErrorContains(t, err, "AUTH_DISABLED")

	t.Setenv("AUTH_DISABLED", "false")
	t.Setenv("AUDIT_LOG_SECRET", "")
	_, err = Load()
	require.ErrorContains(t, err, "AUDIT_LOG_SECRET")

	t.Setenv("AUDIT_LOG_SECRET", "audit-s3cret")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("TOKEN_TTL", "1h")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("IDEMPOTENCY_TTL", "soon")
	_, err := Load()
	require.Error(t, err)
}
