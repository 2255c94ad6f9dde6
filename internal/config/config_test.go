package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/sportify-auth-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := config.New()

	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "Sportify", c.GetAppName())
	require.Equal(t, "http://localhost:5000/api", c.GetAPIURL())
	require.Equal(t, "http://localhost:5000", c.GetAssetsURL())
	require.Equal(t, 30*time.Second, c.GetAPITimeout())
	require.Equal(t, config.StorageBackendFile, c.GetStorageBackend())
	require.Equal(t, ":5000", c.GetPort())
	require.Equal(t, time.Hour, c.GetTokenExpiry())
	require.Equal(t, 5*time.Minute, c.GetTempTokenExpiry())
	require.False(t, c.GetRequireRecaptcha())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SPORTIFY_API_URL", "https://sportify.example.com/api/")
	t.Setenv("SPORTIFY_STORAGE_BACKEND", "SQLite")
	t.Setenv("SPORTIFY_SERVER_PORT", "9090")
	t.Setenv("SPORTIFY_SERVER_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	c := config.New()

	require.Equal(t, "https://sportify.example.com/api", c.GetAPIURL())
	require.Equal(t, "https://sportify.example.com", c.GetAssetsURL())
	require.Equal(t, config.StorageBackendSQLite, c.GetStorageBackend())
	require.Equal(t, ":9090", c.GetPort())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: prod
api:
  url: https://api.sportify.test/api
  timeout: 5s
assets:
  url: https://cdn.sportify.test/
storage:
  backend: redis
  redis_url: redis://localhost:6379/0
security:
  require_recaptcha: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, 5*time.Second, c.GetAPITimeout())
	require.Equal(t, "https://cdn.sportify.test", c.GetAssetsURL())
	require.Equal(t, config.StorageBackendRedis, c.GetStorageBackend())
	require.Equal(t, "redis://localhost:6379/0", c.GetRedisURL())
	require.True(t, c.GetRequireRecaptcha())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
