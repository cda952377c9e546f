package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundrop/budget-planner/config"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.Equal(t, 2*time.Second, cfg.Autosave.Delay)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	path := filepath.Join(t.TempDir(), "budget.toml")
	data := `
[server]
port = "9090"

[store]
plan_id = "fy28_draft"

[autosave]
delay = "500ms"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "fy28_draft", cfg.Store.PlanID)
	assert.Equal(t, "budget.db", cfg.Store.DBPath)
	assert.Equal(t, 500*time.Millisecond, cfg.Autosave.Delay)
}

func TestLoad_EnvOverridesRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o600))

	_, err := config.Load(path)

	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	path := filepath.Join(t.TempDir(), "budget.toml")
	cfg := config.DefaultConfig()
	cfg.Server.Port = "7000"

	require.NoError(t, config.Save(path, cfg))
	got, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
