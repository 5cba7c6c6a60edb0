package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTPrivateKey(t *testing.T) {
	t.Setenv("JWT_PRIVATE_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_PRIVATE_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_PRIVATE_KEY", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_EXPIRY_MINUTES", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("MONGO_DATABASE", "")
	t.Setenv("USER_RATE_LIMIT_RPS", "")
	t.Setenv("USER_RATE_LIMIT_BURST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, "eventapp", cfg.Mongo.Database)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.AdminBootstrap.Enabled())
	assert.Equal(t, 5.0, cfg.RateLimit.UserRPS)
	assert.Equal(t, 10, cfg.RateLimit.UserBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_PRIVATE_KEY", "secret")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "hunter22")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.AdminBootstrap.Enabled())
}

func TestLoad_BadNumberFallsBack(t *testing.T) {
	t.Setenv("JWT_PRIVATE_KEY", "secret")
	t.Setenv("SERVER_PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestNewLogger_Level(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger = NewLogger(LoggingConfig{Level: "nonsense"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
