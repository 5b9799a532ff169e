package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstat/internal/config"
	"github.com/Sumatoshi-tech/locstat/pkg/history"
	"github.com/Sumatoshi-tech/locstat/pkg/history/gitcli"
	"github.com/Sumatoshi-tech/locstat/pkg/history/native"
	"github.com/Sumatoshi-tech/locstat/pkg/langmap"
	"github.com/Sumatoshi-tech/locstat/pkg/observability"
	"github.com/Sumatoshi-tech/locstat/pkg/report"
	"github.com/Sumatoshi-tech/locstat/pkg/scan"
)

const (
	scanCmdUse   = "scan"
	scanCmdShort = "Count changed lines per language in every repository under a directory"
	scanCmdLong  = `Scan walks every immediate subdirectory of --repos as a git repository,
collects the commits authored by the configured identities inside the window,
splits them by the assistant marker and writes one JSON record per repository
and class.

Identities come from --identity, LOCSTAT_IDENTITIES, scan.identities in the
config file and finally USERNAME / GIT_USERNAME. A .env file in the working
directory is loaded first.`

	flagRepos        = "repos"
	flagOut          = "out"
	flagAssistantOut = "assistant-out"
	flagDays         = "days"
	flagIdentity     = "identity"
	flagLanguages    = "languages"
	flagUnmapped     = "unmapped"
	flagMarker       = "marker"
	flagBackend      = "backend"
	flagRunID        = "run-id"
	flagQueryTimeout = "query-timeout"
)

type scanFlags struct {
	repos        string
	out          string
	assistantOut string
	days         int
	identities   []string
	languages    string
	unmapped     string
	marker       string
	backend      string
	runID        string
	queryTimeout time.Duration
}

// NewScanCommand creates the scan subcommand.
func NewScanCommand(globals *Globals) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   scanCmdUse,
		Short: scanCmdShort,
		Long:  scanCmdLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := globals.open(cmd)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			flags.apply(cmd, sess.cfg)

			validateErr := sess.cfg.Validate()
			if validateErr != nil {
				return fmt.Errorf("%w: %w", config.ErrSetup, validateErr)
			}

			return runScan(cmd.Context(), sess, flags.identities)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.repos, flagRepos, config.DefaultReposDir, "directory whose subdirectories are git repositories")
	f.StringVar(&flags.out, flagOut, config.DefaultOutDir, "output directory for regular records")
	f.StringVar(&flags.assistantOut, flagAssistantOut, config.DefaultAssistantOutDir,
		"output directory for assistant records")
	f.IntVar(&flags.days, flagDays, config.DefaultWindowDays, "window length in days")
	f.StringArrayVar(&flags.identities, flagIdentity, nil, "author identity (repeatable)")
	f.StringVar(&flags.languages, flagLanguages, config.DefaultLanguagesFile, "extension table (JSON or YAML)")
	f.StringVar(&flags.unmapped, flagUnmapped, string(langmap.DefaultUnmappedMode),
		"unmapped extensions: skip, other or detect")
	f.StringVar(&flags.marker, flagMarker, scan.DefaultMarker, "commit message marker of assistant commits")
	f.StringVar(&flags.backend, flagBackend, config.DefaultBackend, "history backend: git or libgit2")
	f.StringVar(&flags.runID, flagRunID, "", "record file prefix (default: first identity)")
	f.DurationVar(&flags.queryTimeout, flagQueryTimeout, 0, "per-query timeout for the git backend (0 disables)")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed(flagRepos) {
		cfg.Scan.Repos = f.repos
	}

	if changed(flagOut) {
		cfg.Scan.Out = f.out
	}

	if changed(flagAssistantOut) {
		cfg.Scan.AssistantOut = f.assistantOut
	}

	if changed(flagDays) {
		cfg.Scan.Days = f.days
	}

	if changed(flagLanguages) {
		cfg.Scan.Languages = f.languages
	}

	if changed(flagUnmapped) {
		cfg.Scan.Unmapped = f.unmapped
	}

	if changed(flagMarker) {
		cfg.Attribution.Marker = f.marker
	}

	if changed(flagBackend) {
		cfg.History.Backend = f.backend
	}

	if changed(flagRunID) {
		cfg.Scan.RunID = f.runID
	}

	if changed(flagQueryTimeout) {
		cfg.History.QueryTimeout = f.queryTimeout
	}
}

func runScan(ctx context.Context, sess *session, identityFlags []string) error {
	cfg := sess.cfg
	logger := sess.logger()

	identities, err := config.ResolveIdentities(identityFlags, cfg.Scan.Identities, os.Getenv)
	if err != nil {
		return err
	}

	table, err := langmap.LoadTable(cfg.Scan.Languages)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrSetup, err)
	}

	mode, err := langmap.ParseUnmappedMode(cfg.Scan.Unmapped)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrSetup, err)
	}

	metrics, err := observability.NewScanMetrics(sess.providers.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	backend := newBackend(cfg.History)
	since := cfg.Since(time.Now())

	scanner := scan.New(backend, langmap.NewClassifier(table, mode), scan.Config{
		Identities: identities,
		Marker:     cfg.Attribution.Marker,
		Since:      since,
	},
		scan.WithLogger(logger),
		scan.WithMetrics(metrics),
		scan.WithTracer(sess.providers.Tracer),
	)

	runID := config.RunID(cfg.Scan.RunID, identities)
	sink := newRecordSink(
		report.NewWriter(cfg.Scan.Out, runID),
		report.NewWriter(cfg.Scan.AssistantOut, runID),
		logger,
	)

	logger.InfoContext(ctx, "scan started",
		"repos", cfg.Scan.Repos,
		"since", history.FormatSince(since),
		"identities", len(identities),
		"backend", backend.Name())

	runErr := scanner.Run(ctx, cfg.Scan.Repos, sink.write)
	if runErr != nil {
		return fmt.Errorf("scan %s: %w", cfg.Scan.Repos, runErr)
	}

	logger.InfoContext(ctx, "scan finished", "repositories", sink.repos, "records", sink.records)

	return nil
}

func newBackend(cfg config.HistoryConfig) history.Backend {
	if cfg.Backend == config.BackendLibgit2 {
		return native.New()
	}

	return gitcli.New(cfg.QueryTimeout)
}
