package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no .env or config.yaml is read.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.RedisAddr())
	assert.False(t, cfg.GoogleEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("FRONTEND_URL", "https://todo.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("LOGIN_LOCKOUT", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
	assert.Equal(t, "https://todo.example.com", cfg.FrontendURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.GoogleEnabled())
	assert.Equal(t, 2*time.Minute, cfg.LoginLockout)
}
