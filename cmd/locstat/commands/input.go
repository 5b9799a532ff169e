package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstat/internal/config"
	"github.com/Sumatoshi-tech/locstat/pkg/chart"
	"github.com/Sumatoshi-tech/locstat/pkg/loc"
	"github.com/Sumatoshi-tech/locstat/pkg/palette"
	"github.com/Sumatoshi-tech/locstat/pkg/report"
)

// Flags shared by render and summary.
const (
	flagReports  = "reports"
	flagTokei    = "tokei"
	flagColors   = "colors"
	flagSkip     = "skip"
	flagMinLines = "min-lines"
	flagFallback = "fallback"
)

// chartInput selects the totals to chart and how entries are filtered and coloured.
type chartInput struct {
	reports  []string
	tokei    string
	colors   string
	skip     []string
	minLines int
	fallback string
}

func (in *chartInput) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&in.reports, flagReports, []string{config.DefaultOutDir},
		"record directory to merge (repeatable)")
	f.StringVar(&in.tokei, flagTokei, "", "read totals from a tokei JSON report instead of records")
	f.StringVar(&in.colors, flagColors, config.DefaultColorsFile, "colour table (JSON or YAML)")
	f.StringArrayVar(&in.skip, flagSkip, nil, "language to leave out (repeatable)")
	f.IntVar(&in.minLines, flagMinLines, config.DefaultMinLines, "leave out languages with fewer lines")
	f.StringVar(&in.fallback, flagFallback, string(palette.DefaultFallback),
		"colour for languages missing from the table: hash or gray")

	cmd.MarkFlagsMutuallyExclusive(flagReports, flagTokei)
}

// apply copies explicitly set flags over the loaded configuration. Without
// --reports the records are read from scan.out.
func (in *chartInput) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed(flagColors) {
		cfg.Render.Colors = in.colors
	}

	if changed(flagSkip) {
		cfg.Render.Skip = in.skip
	}

	if changed(flagMinLines) {
		cfg.Render.MinLines = in.minLines
	}

	if changed(flagFallback) {
		cfg.Render.Fallback = in.fallback
	}

	if !changed(flagReports) {
		in.reports = []string{cfg.Scan.Out}
	}

	validateErr := cfg.ValidateRender()
	if validateErr != nil {
		return fmt.Errorf("%w: %w", config.ErrSetup, validateErr)
	}

	return nil
}

func (in *chartInput) totals() (*loc.Totals, error) {
	if in.tokei != "" {
		totals, err := report.ReadTokei(in.tokei)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrSetup, err)
		}

		return totals, nil
	}

	totals, _, err := report.LoadDirs(in.reports)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrSetup, err)
	}

	return totals, nil
}

// assigner loads the colour table. A missing table at the default location means
// every colour comes from the fallback; a missing table that was asked for is an error.
func assigner(cmd *cobra.Command, cfg config.RenderConfig) (*palette.Assigner, error) {
	fallback, err := palette.ParseFallback(cfg.Fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrSetup, err)
	}

	table, err := palette.LoadTable(cfg.Colors)

	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed(flagColors):
		table = palette.Table{}
	default:
		return nil, fmt.Errorf("%w: %w", config.ErrSetup, err)
	}

	return palette.NewAssigner(table, fallback), nil
}

func chartOptions(cfg config.RenderConfig) chart.Options {
	opts := chart.DefaultOptions()
	opts.Skip = cfg.Skip
	opts.MinLines = cfg.MinLines

	return opts
}
