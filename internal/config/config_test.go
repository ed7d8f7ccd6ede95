package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("REDIS_ADDR", "cache:6379")
	os.Setenv("REDIS_PERMISSION_TTL_SEC", "60")
	defer os.Unsetenv("DB_MAX_OPEN_CONNS")
	defer os.Unsetenv("REDIS_ADDR")
	defer os.Unsetenv("REDIS_PERMISSION_TTL_SEC")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.PermissionTTL())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
