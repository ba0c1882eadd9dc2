package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stikie/stikie/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.NotEmpty(t, cfg.StateDir)
	assert.Empty(t, cfg.Remote.DSN, "local-only by default")
	assert.Equal(t, 50, cfg.Remote.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.Debounce.Std())
	assert.Equal(t, 30*time.Second, cfg.Sync.ProbeInterval.Std())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stikie.yaml")
	content := `state_dir: /tmp/boards
remote:
  dsn: postgres://localhost/stikie
  batch_size: 25
sync:
  debounce: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/boards", cfg.StateDir)
	assert.Equal(t, "postgres://localhost/stikie", cfg.Remote.DSN)
	assert.Equal(t, 25, cfg.Remote.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Debounce.Std())
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_dir: [unterminated"), 0644))

	_, err := config.LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stikie.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sync:\n  debounce: soon\n"), 0644))

	_, err := config.LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}

func TestMerge_OverlaysNonZeroFields(t *testing.T) {
	base := config.DefaultConfig()
	defaultDebounce := base.Sync.Debounce

	base.Merge(&config.Config{
		StateDir: "/custom",
		Remote:   config.RemoteConf{DSN: "postgres://remote/db"},
	})

	assert.Equal(t, "/custom", base.StateDir)
	assert.Equal(t, "postgres://remote/db", base.Remote.DSN)
	// Fields absent from the overlay keep their previous values.
	assert.Equal(t, 50, base.Remote.BatchSize)
	assert.Equal(t, defaultDebounce, base.Sync.Debounce)
}

func TestMerge_Nil(t *testing.T) {
	cfg := config.DefaultConfig()
	before := *cfg
	cfg.Merge(nil)
	assert.Equal(t, before, *cfg)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StateDir = ""
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Sync.Debounce = config.Duration(-time.Second)
	assert.Error(t, cfg.Validate())
}
