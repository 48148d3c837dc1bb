package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_LocalFileAndEnvOverrides(t *testing.T) {
	t.Chdir("../..")
	t.Setenv("ENV", "local")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("MESSAGING_DRIVER", "kafka")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Grpc.Port)
	assert.Equal(t, "developer", cfg.Database.User)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "kafka", cfg.Messaging.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Messaging.Brokers)
	assert.True(t, cfg.Database.MigrateOnBoot)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir("../..")
	t.Setenv("ENV", "local")
	t.Setenv("MESSAGING_DRIVER", "carrier-pigeon")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown messaging driver")
}

func TestAuthConfig_TTLDefaults(t *testing.T) {
	var a AuthConfig
	assert.Equal(t, 15*time.Minute, a.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, a.RefreshTokenTTL())

	a = AuthConfig{AccessTokenMinutes: 5, RefreshTokenHours: 1}
	assert.Equal(t, 5*time.Minute, a.AccessTokenTTL())
	assert.Equal(t, time.Hour, a.RefreshTokenTTL())
}
