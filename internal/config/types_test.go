package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstat/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Scan: config.ScanConfig{
			Days:     30,
			Unmapped: "skip",
		},
		Render: config.RenderConfig{
			MinLines: 1,
			Fallback: "hash",
		},
		History: config.HistoryConfig{
			Backend: config.BackendGit,
		},
		Logging: config.LoggingConfig{
			Level: "info",
		},
		Telemetry: config.TelemetryConfig{
			SampleRatio: 1,
		},
	}
}

func TestValidate_ValidConfig_NoError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg.History.Backend = config.BackendLibgit2
	cfg.Scan.Unmapped = "detect"
	cfg.Render.Fallback = "gray"
	require.NoError(t, cfg.Validate())
}

func TestValidate_InvalidDays_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Scan.Days = 0

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidDays)

	cfg.Scan.Days = config.MaxWindowDays + 1
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidDays)

	cfg.Scan.Days = config.MaxWindowDays
	assert.NoError(t, cfg.Validate())
}

func TestValidateRender_IgnoresScanSection(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Scan.Days = 0
	cfg.Scan.Unmapped = "guess"
	cfg.History.Backend = "svn"

	require.Error(t, cfg.Validate())
	require.NoError(t, cfg.ValidateRender())

	cfg.Render.Fallback = "rainbow"
	assert.ErrorIs(t, cfg.ValidateRender(), config.ErrInvalidFallback)
}

func TestValidate_InvalidUnmapped_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Scan.Unmapped = "guess"

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidUnmapped)
}

func TestValidate_InvalidBackend_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.History.Backend = "svn"

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidBackend)
}

func TestValidate_InvalidQueryTimeout_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.History.QueryTimeout = -time.Second

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidQueryTimeout)
}

func TestValidate_InvalidFallback_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Render.Fallback = "rainbow"

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidFallback)
}

func TestValidate_InvalidMinLines_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Render.MinLines = -1

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidMinLines)
}

func TestValidate_InvalidLogLevel_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Logging.Level = "chatty"

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidLogLevel)
}

func TestValidate_InvalidSampleRatio_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Telemetry.SampleRatio = 1.5

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidSampleRatio)
}

func TestSince(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Scan.Days = 7

	now := time.Date(2024, 6, 8, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), cfg.Since(now))
}

func TestSince_LargeWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)

	for _, days := range []int{config.MaxWindowDays, 200000} {
		cfg := validConfig()
		cfg.Scan.Days = days

		since := cfg.Since(now)
		assert.True(t, since.Before(now), days)
	}

	cfg := validConfig()
	cfg.Scan.Days = config.MaxWindowDays
	assert.Equal(t, 1924, cfg.Since(now).Year())
}
