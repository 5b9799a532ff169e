package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/locstat/pkg/langmap"
	"github.com/Sumatoshi-tech/locstat/pkg/palette"
)

// Default configuration values.
const (
	DefaultReposDir        = "temp"
	DefaultOutDir          = "recent"
	DefaultAssistantOutDir = "recent-assistant"
	DefaultWindowDays      = 30
	DefaultLanguagesFile   = "languages.json"
	DefaultColorsFile      = "colors.json"
	DefaultChartFile       = "recent.svg"
	DefaultMinLines        = 1
	DefaultBackend         = BackendGit
	DefaultLogLevel        = "info"
	DefaultSampleRatio     = 1.0
)

// History backends.
const (
	BackendGit     = "git"
	BackendLibgit2 = "libgit2"
)

// MaxWindowDays caps scan.days at a century.
const MaxWindowDays = 36500

// Config is the top-level configuration struct for locstat.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Scan        ScanConfig        `mapstructure:"scan"`
	Attribution AttributionConfig `mapstructure:"attribution"`
	Render      RenderConfig      `mapstructure:"render"`
	History     HistoryConfig     `mapstructure:"history"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// ScanConfig holds repository scanning settings.
type ScanConfig struct {
	Repos        string   `mapstructure:"repos"`
	Out          string   `mapstructure:"out"`
	AssistantOut string   `mapstructure:"assistant_out"`
	Days         int      `mapstructure:"days"`
	Identities   []string `mapstructure:"identities"`
	Languages    string   `mapstructure:"languages"`
	Unmapped     string   `mapstructure:"unmapped"`
	RunID        string   `mapstructure:"run_id"`
}

// AttributionConfig holds the assistant marker.
type AttributionConfig struct {
	Marker string `mapstructure:"marker"`
}

// RenderConfig holds chart rendering settings.
type RenderConfig struct {
	Colors   string   `mapstructure:"colors"`
	Out      string   `mapstructure:"out"`
	HTML     string   `mapstructure:"html"`
	Skip     []string `mapstructure:"skip"`
	MinLines int      `mapstructure:"min_lines"`
	Fallback string   `mapstructure:"fallback"`
}

// HistoryConfig selects and tunes the history backend.
type HistoryConfig struct {
	Backend      string        `mapstructure:"backend"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsFile  string  `mapstructure:"metrics_file"`
}

// ErrSetup marks configuration and input problems that abort a command.
var ErrSetup = errors.New("setup error")

// Sentinel errors for configuration validation.
var (
	// ErrInvalidDays indicates the window is not positive or exceeds MaxWindowDays.
	ErrInvalidDays = errors.New("scan.days must be between 1 and 36500")
	// ErrInvalidUnmapped indicates an unknown unmapped-extension mode.
	ErrInvalidUnmapped = errors.New("scan.unmapped must be skip, other or detect")
	// ErrInvalidBackend indicates an unknown history backend.
	ErrInvalidBackend = errors.New("history.backend must be git or libgit2")
	// ErrInvalidQueryTimeout indicates a negative query timeout.
	ErrInvalidQueryTimeout = errors.New("history.query_timeout must be non-negative")
	// ErrInvalidFallback indicates an unknown colour fallback.
	ErrInvalidFallback = errors.New("render.fallback must be hash or gray")
	// ErrInvalidMinLines indicates the minimum line filter is negative.
	ErrInvalidMinLines = errors.New("render.min_lines must be non-negative")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
	// ErrInvalidSampleRatio indicates the trace sample ratio is out of range.
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	scanErr := c.validateScan()
	if scanErr != nil {
		return scanErr
	}

	return c.ValidateRender()
}

// ValidateRender checks only the settings render and summary depend on, so an
// invalid scan section does not block rendering existing records.
func (c *Config) ValidateRender() error {
	if c.Render.MinLines < 0 {
		return ErrInvalidMinLines
	}

	_, fallbackErr := palette.ParseFallback(c.Render.Fallback)
	if fallbackErr != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFallback, c.Render.Fallback)
	}

	return c.validateShared()
}

// validateShared checks the sections every command reads before running.
func (c *Config) validateShared() error {
	_, levelErr := c.Logging.SlogLevel()
	if levelErr != nil {
		return levelErr
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Days <= 0 || c.Scan.Days > MaxWindowDays {
		return fmt.Errorf("%w: %d", ErrInvalidDays, c.Scan.Days)
	}

	_, modeErr := langmap.ParseUnmappedMode(c.Scan.Unmapped)
	if modeErr != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUnmapped, c.Scan.Unmapped)
	}

	switch c.History.Backend {
	case BackendGit, BackendLibgit2:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.History.Backend)
	}

	if c.History.QueryTimeout < 0 {
		return ErrInvalidQueryTimeout
	}

	return nil
}

// Since returns the start of the scanning window ending at now, counted in
// calendar days in now's location.
func (c *Config) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.Scan.Days).UTC()
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	if l.Level == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}
