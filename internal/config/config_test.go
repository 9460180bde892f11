package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadPath(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		path := writeConfig(t, `
env: dev
dsn: postgres://u:p@localhost:5432/blog
auth:
  token_secret: secret
  session_secret: session
object_storage:
  driver: local
`)

		cfg, err := LoadPath(path)
		require.NoError(t, err)

		assert.Equal(t, "dev", cfg.Env)
		assert.Equal(t, "8080", cfg.HTTP.Port)
		assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
		assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
		assert.Equal(t, StorageDriverLocal, cfg.ObjectStorage.Driver)
		assert.Equal(t, "./uploads", cfg.FileStorage.BaseDir)
		assert.Equal(t, int64(10485760), cfg.Uploads.MaxSize)
		assert.Equal(t, 24*time.Hour, cfg.Sweeper.GracePeriod)
		assert.True(t, cfg.Sweeper.Enabled)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, `
dsn: postgres://u:p@localhost:5432/blog
auth:
  token_secret: secret
  session_secret: session
object_storage:
  bucket: from-file
`)
		t.Setenv("S3_BUCKET", "from-env")

		cfg, err := LoadPath(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.ObjectStorage.Bucket)
	})

	t.Run("missing required", func(t *testing.T) {
		path := writeConfig(t, "env: prod\n")

		_, err := LoadPath(path)
		assert.Error(t, err)
	})

	t.Run("zero sweeper interval falls back to default", func(t *testing.T) {
		path := writeConfig(t, `
dsn: postgres://u:p@localhost:5432/blog
auth:
  token_secret: secret
  session_secret: session
sweeper:
  interval: 0s
`)

		cfg, err := LoadPath(path)
		require.NoError(t, err)
		assert.Equal(t, 6*time.Hour, cfg.Sweeper.Interval)
	})

	t.Run("negative sweeper interval rejected", func(t *testing.T) {
		for _, interval := range []string{"-1s", "-5m"} {
			path := writeConfig(t, `
dsn: postgres://u:p@localhost:5432/blog
auth:
  token_secret: secret
  session_secret: session
sweeper:
  enabled: true
  interval: `+interval+`
`)

			_, err := LoadPath(path)
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr, interval)
			assert.ErrorContains(t, err, "sweeper.interval")
		}
	})

	t.Run("disabled sweeper may omit the interval", func(t *testing.T) {
		path := writeConfig(t, `
dsn: postgres://u:p@localhost:5432/blog
auth:
  token_secret: secret
  session_secret: session
sweeper:
  enabled: false
  interval: -1s
`)

		cfg, err := LoadPath(path)
		require.NoError(t, err)
		assert.False(t, cfg.Sweeper.Enabled)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "does not exist")
	})
}

func TestMustLoadPath_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
