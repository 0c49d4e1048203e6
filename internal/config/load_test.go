package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DAYPLAN_DATABASE_URL", "postgres://localhost:5432/dayplan")
	t.Setenv("DAYPLAN_AUTH_ADMIN_KEY_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("DAYPLAN_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DAYPLAN_PAYMENT_VERIFIER_URL", "https://billing.example.com/verify")
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYPLAN_SERVER_PORT", "9999")
	t.Setenv("DAYPLAN_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/dayplan", cfg.Database.URL)
	assert.True(t, cfg.Auth.ExpiredReadGrace, "grace policy should default on")
	assert.Equal(t, 31, cfg.Payment.PolicyWindowDays)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10, cfg.Database.QueryTimeoutSeconds)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 60, cfg.Redis.TTLSeconds)
	assert.Empty(t, cfg.Redis.Addr, "cache should be disabled by default")
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYPLAN_DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYPLAN_AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYPLAN_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
}
