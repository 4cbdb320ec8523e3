package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unset(t, "PORT", "DB_DRIVER", "TOKEN_TTL", "CORS_ORIGINS", "UPLOAD_MAX_BYTES", "ADMIN_PASSWORD", "S3_BUCKET")

	cfg := Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, DefaultAdminPassword, cfg.AdminPassword)
	assert.Empty(t, cfg.S3Bucket)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")
	t.Setenv("UPLOAD_MAX_BYTES", "lots")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
}
