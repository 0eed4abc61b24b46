package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DB_DSN", "MEDIA_DIR", "LOG_FILE", "LOG_LEVEL", "JWT_SECRET", "TOKEN_TTL",
		"REDIS_ADDR", "LOCK_TTL", "MINIO_ENDPOINT", "MINIO_BUCKET", "SEED_DEMO", "EXPOSE_RESET_CODE", "BODY_LIMIT", "CONFIG_FILE"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "bookmarket.db", cfg.DBDSN)
	assert.Equal(t, "./media", cfg.MediaDir)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, "covers", cfg.MinioBucket)
	assert.Equal(t, 4<<20, cfg.BodyLimit)
	assert.False(t, cfg.ExposeResetCode)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
dbDSN: /tmp/file.db
tokenTTL: 2h
redisAddr: localhost:6379
seedDemo: true
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("EXPOSE_RESET_CODE", "true")
	t.Setenv("BODY_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "/tmp/file.db", cfg.DBDSN)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.SeedDemo)
	assert.True(t, cfg.ExposeResetCode)
	assert.Equal(t, 4<<20, cfg.BodyLimit)
}

func TestBrokenFileIsIgnored(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
}
