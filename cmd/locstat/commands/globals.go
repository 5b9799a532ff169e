// Package commands implements the locstat CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstat/internal/config"
	"github.com/Sumatoshi-tech/locstat/pkg/observability"
	"github.com/Sumatoshi-tech/locstat/pkg/version"
)

// Persistent flag names.
const (
	flagConfig      = "config"
	flagVerbose     = "verbose"
	flagQuiet       = "quiet"
	flagLogJSON     = "log-json"
	flagMetricsFile = "metrics-file"
)

// Globals carries the persistent flags shared by every subcommand.
type Globals struct {
	ConfigPath  string
	Verbose     bool
	Quiet       bool
	LogJSON     bool
	MetricsFile string
	// DotEnv is loaded before the configuration; empty skips it.
	DotEnv      string
}

// NewGlobals returns Globals with the default .env location.
func NewGlobals() *Globals {
	return &Globals{DotEnv: config.DefaultDotEnvFile}
}

// Bind registers the persistent flags on root.
func (g *Globals) Bind(root *cobra.Command) {
	flags := root.PersistentFlags()

	flags.StringVar(&g.ConfigPath, flagConfig, "", "config file (default .locstat.yaml in . or $HOME)")
	flags.BoolVarP(&g.Verbose, flagVerbose, "v", false, "verbose output")
	flags.BoolVarP(&g.Quiet, flagQuiet, "q", false, "only log warnings and errors")
	flags.BoolVar(&g.LogJSON, flagLogJSON, false, "log in JSON")
	flags.StringVar(&g.MetricsFile, flagMetricsFile, "", "write Prometheus metrics to this file on exit")
}

// session is the per-command runtime: resolved configuration plus telemetry.
type session struct {
	cfg       *config.Config
	providers observability.Providers
}

func (s *session) logger() *slog.Logger {
	return s.providers.Logger
}

func (s *session) close(ctx context.Context) {
	err := s.providers.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		s.logger().WarnContext(ctx, "telemetry shutdown failed", "error", err)
	}
}

// open loads .env and the configuration, applies persistent flags and starts telemetry.
func (g *Globals) open(cmd *cobra.Command) (*session, error) {
	if g.DotEnv != "" {
		envErr := config.LoadDotEnv(g.DotEnv)
		if envErr != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrSetup, envErr)
		}
	}

	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrSetup, err)
	}

	if g.LogJSON {
		cfg.Logging.JSON = true
	}

	if g.MetricsFile != "" {
		cfg.Telemetry.MetricsFile = g.MetricsFile
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrSetup, err)
	}

	switch {
	case g.Verbose:
		level = slog.LevelDebug
	case g.Quiet:
		level = slog.LevelWarn
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Command = cmd.Name()
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return &session{cfg: cfg, providers: providers}, nil
}
