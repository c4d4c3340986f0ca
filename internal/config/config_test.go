package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, "meds-buddy", cfg.App)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "10 0 * * *", cfg.Digest.Schedule)
	assert.True(t, cfg.DB.Migrate)
	assert.Empty(t, cfg.DB.DSN)
}

func TestLoad_PrefixedAndLegacyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MEDS_LOG_LEVEL", "warn")
	t.Setenv("MEDS_AUTH_REMOTE_TIMEOUT", "2s")
	t.Setenv("MEDS_DIGEST_ENABLED", "false")

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level, "prefixed wins over legacy")
	assert.Equal(t, 2*time.Second, cfg.Auth.RemoteTimeout)
	assert.False(t, cfg.Digest.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
db:
  dsn: postgres://localhost/meds
digest:
  schedule: "0 6 * * *"
`), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/meds", cfg.DB.DSN)
	assert.Equal(t, "0 6 * * *", cfg.Digest.Schedule)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("MEDS_DIGEST_SCHEDULE", "every day")
	_, err := load("")
	assert.ErrorContains(t, err, "digest.schedule")

	t.Setenv("MEDS_DIGEST_SCHEDULE", "10 0 * * *")
	t.Setenv("MEDS_AUTH_JWT_SECRET", "s")
	t.Setenv("MEDS_AUTH_REMOTE_URL", "http://auth")
	_, err = load("")
	assert.ErrorContains(t, err, "not both")

	_, err = load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
