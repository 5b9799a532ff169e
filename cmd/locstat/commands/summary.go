package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstat/pkg/chart"
	"github.com/Sumatoshi-tech/locstat/pkg/terminal"
)

const (
	summaryCmdUse   = "summary"
	summaryCmdShort = "Print merged records as a table"
	flagNoColor     = "no-color"
)

// NewSummaryCommand creates the summary subcommand.
func NewSummaryCommand(globals *Globals) *cobra.Command {
	var (
		in      chartInput
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   summaryCmdUse,
		Short: summaryCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := globals.open(cmd)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			applyErr := in.apply(cmd, sess.cfg)
			if applyErr != nil {
				return applyErr
			}

			colors, err := assigner(cmd, sess.cfg.Render)
			if err != nil {
				return err
			}

			totals, err := in.totals()
			if err != nil {
				return err
			}

			entries, err := chart.Entries(totals, chartOptions(sess.cfg.Render), colors)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}

			termCfg := terminal.NewConfig()
			termCfg.NoColor = termCfg.NoColor || noColor

			return terminal.Summary(cmd.OutOrStdout(), entries, termCfg)
		},
	}

	in.bind(cmd)
	cmd.Flags().BoolVar(&noColor, flagNoColor, false, "disable colour swatches")

	return cmd
}
