package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Refresh.MaxSymbols)
	assert.Equal(t, 10, cfg.Refresh.BatchSize)
	assert.Equal(t, 1, cfg.Refresh.Concurrency)
	assert.Equal(t, 50, cfg.Refresh.FallbackSize)
	assert.Equal(t, 60*time.Second, cfg.Refresh.GetInterval())
	assert.Equal(t, "Asia/Kolkata", cfg.Calendar.Timezone)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "yahoo", cfg.Clients.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FNOSCAN_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FNOSCAN_PROVIDER", "EODHD")
	t.Setenv("FNOSCAN_STORAGE_BACKEND", "SurrealDB")
	t.Setenv("FNOSCAN_REFRESH_INTERVAL", "2m")
	t.Setenv("FNOSCAN_CONCURRENCY", "4")
	t.Setenv("FNOSCAN_DATA_PATH", "/var/lib/fnoscan")
	t.Setenv("EODHD_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "eodhd", cfg.Clients.Provider)
	assert.Equal(t, "surrealdb", cfg.Storage.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Refresh.GetInterval())
	assert.Equal(t, 4, cfg.Refresh.Concurrency)
	assert.Equal(t, filepath.Join("/var/lib/fnoscan", "snapshot"), cfg.Storage.Path)
	assert.Equal(t, "from-env", cfg.Clients.EODHD.APIKey)
}

func TestConfig_InvalidIntervalFallsBack(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Refresh.Interval = "soon"
	assert.Equal(t, 60*time.Second, cfg.Refresh.GetInterval())

	cfg.Refresh.Interval = "-5s"
	assert.Equal(t, 60*time.Second, cfg.Refresh.GetInterval())
}

func TestLoadConfig_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
environment = "staging"

[refresh]
interval = "30s"
batch_size = 5

[server]
port = 7000
`), 0644))
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 7100
`), 0644))

	cfg, err := LoadConfig(base, filepath.Join(dir, "missing.toml"), override)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Refresh.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Refresh.GetInterval())
	// untouched defaults survive the merge
	assert.Equal(t, 25, cfg.Refresh.MaxSymbols)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[refresh]
concurrency = 0
`), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Concurrency")
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("FNOSCAN_STORAGE_BACKEND", "badger")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_ParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestIsProduction(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.False(t, cfg.IsProduction())

	cfg.Environment = " Prod "
	assert.True(t, cfg.IsProduction())
}

func TestIsFresh(t *testing.T) {
	assert.False(t, IsFresh(time.Time{}, time.Hour))
	assert.True(t, IsFresh(time.Now().Add(-time.Minute), time.Hour))
	assert.False(t, IsFresh(time.Now().Add(-2*time.Hour), time.Hour))
	assert.Equal(t, 3*time.Minute, SnapshotTTL(time.Minute))
}

func TestLoadVersionFile_OnlyFillsDefaults(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })

	Version, Build, GitCommit = "dev", "unknown", "abc123"

	path := filepath.Join(t.TempDir(), ".version")
	require.NoError(t, os.WriteFile(path, []byte("# build info\nversion: 1.2.3\nbuild: 2026-01-01\ncommit: ffff\n"), 0644))

	loadVersionFile(path)

	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "2026-01-01", Build)
	assert.Equal(t, "abc123", GitCommit)
}
