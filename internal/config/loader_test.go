package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstat/internal/config"
	"github.com/Sumatoshi-tech/locstat/pkg/scan"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultReposDir, cfg.Scan.Repos)
	assert.Equal(t, config.DefaultOutDir, cfg.Scan.Out)
	assert.Equal(t, config.DefaultAssistantOutDir, cfg.Scan.AssistantOut)
	assert.Equal(t, config.DefaultWindowDays, cfg.Scan.Days)
	assert.Equal(t, "skip", cfg.Scan.Unmapped)
	assert.Equal(t, scan.DefaultMarker, cfg.Attribution.Marker)
	assert.Equal(t, config.DefaultChartFile, cfg.Render.Out)
	assert.Equal(t, "hash", cfg.Render.Fallback)
	assert.Equal(t, config.DefaultMinLines, cfg.Render.MinLines)
	assert.Equal(t, config.BackendGit, cfg.History.Backend)
	assert.Zero(t, cfg.History.QueryTimeout)
}

func TestLoadConfig_FileFromWorkingDirectory(t *testing.T) {
	dir := isolate(t)

	doc := `scan:
  days: 14
  identities: [ada, "Ada Lovelace"]
  unmapped: other
render:
  skip: [JSON, Markdown]
  min_lines: 100
history:
  backend: libgit2
  query_timeout: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".locstat.yaml"), []byte(doc), 0o644))

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Scan.Days)
	assert.Equal(t, []string{"ada", "Ada Lovelace"}, cfg.Scan.Identities)
	assert.Equal(t, "other", cfg.Scan.Unmapped)
	assert.Equal(t, []string{"JSON", "Markdown"}, cfg.Render.Skip)
	assert.Equal(t, 100, cfg.Render.MinLines)
	assert.Equal(t, config.BackendLibgit2, cfg.History.Backend)
	assert.Equal(t, 5*time.Second, cfg.History.QueryTimeout)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  days: 14\n"), 0o644))

	t.Setenv("LOCSTAT_SCAN_DAYS", "90")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Scan.Days)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestLoadConfig_InvalidScanSectionLoads(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  days: 0\nhistory:\n  backend: svn\n"), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateRender())
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidDays)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := config.LoadConfig(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}
