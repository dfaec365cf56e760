package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
server:
  addr: ":8080"
db:
  dsn: "postgres://localhost/anonfl"
auth:
  jwt_secret: "secret"
notify:
  base_url: "http://localhost:9000"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Notify.TimeoutSeconds)
	assert.Equal(t, 20, cfg.Pagination.PageSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 50, cfg.Pagination.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("NOTIFY_BASE_URL", "")

	_, err := Load(writeConfig(t, "server:\n  addr: \":8080\"\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
