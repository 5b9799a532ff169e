// Package main provides the entry point for the locstat CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstat/cmd/locstat/commands"
	"github.com/Sumatoshi-tech/locstat/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "locstat",
		Short: "Lines changed per language across local git repositories",
		Long: `locstat counts the lines you changed per language over a rolling window,
separates commits carrying the assistant co-author marker, and renders the
result as a stacked-bar SVG chart.

Commands:
  scan      Scan repositories and write per-repository records
  render    Merge records into an SVG (and optional HTML) chart
  summary   Print merged records as a table
  validate  Check an extension or colour table`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	globals := commands.NewGlobals()
	globals.Bind(rootCmd)

	rootCmd.AddCommand(commands.NewScanCommand(globals))
	rootCmd.AddCommand(commands.NewRenderCommand(globals))
	rootCmd.AddCommand(commands.NewSummaryCommand(globals))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "locstat %s\n", version.String())
		},
	}
}
