package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstat/internal/config"
	"github.com/Sumatoshi-tech/locstat/pkg/chart"
)

const (
	renderCmdUse   = "render"
	renderCmdShort = "Render merged records as a stacked-bar SVG chart"
	renderDirPerm  = 0o750
	renderFilePerm = 0o644
	renderTitle    = "Lines changed per language"

	flagHTML = "html"
)

// NewRenderCommand creates the render subcommand.
func NewRenderCommand(globals *Globals) *cobra.Command {
	var (
		in      chartInput
		outPath string
		html    string
	)

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := globals.open(cmd)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			if cmd.Flags().Changed(flagOut) {
				sess.cfg.Render.Out = outPath
			}

			if cmd.Flags().Changed(flagHTML) {
				sess.cfg.Render.HTML = html
			}

			applyErr := in.apply(cmd, sess.cfg)
			if applyErr != nil {
				return applyErr
			}

			return runRender(cmd, sess, &in)
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVarP(&outPath, flagOut, "o", config.DefaultChartFile, "SVG output path")
	cmd.Flags().StringVar(&html, flagHTML, "", "also write an interactive HTML chart to this path")

	return cmd
}

func runRender(cmd *cobra.Command, sess *session, in *chartInput) error {
	ctx := cmd.Context()
	cfg := sess.cfg.Render

	colors, err := assigner(cmd, cfg)
	if err != nil {
		return err
	}

	totals, err := in.totals()
	if err != nil {
		return err
	}

	layout, err := chart.NewLayout(totals, chartOptions(cfg), colors)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	svg, err := chart.RenderSVG(layout)
	if err != nil {
		return fmt.Errorf("render svg: %w", err)
	}

	writeErr := writeFile(cfg.Out, svg)
	if writeErr != nil {
		return writeErr
	}

	sess.logger().InfoContext(ctx, "chart written",
		"path", cfg.Out, "languages", len(layout.Entries), "lines", layout.Total)

	if cfg.HTML == "" {
		return nil
	}

	htmlErr := writeHTML(cfg.HTML, layout)
	if htmlErr != nil {
		return htmlErr
	}

	sess.logger().InfoContext(ctx, "html chart written", "path", cfg.HTML)

	return nil
}

func writeFile(path string, data []byte) error {
	mkErr := os.MkdirAll(filepath.Dir(path), renderDirPerm)
	if mkErr != nil {
		return fmt.Errorf("create output dir: %w", mkErr)
	}

	err := os.WriteFile(path, data, renderFilePerm)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func writeHTML(path string, layout *chart.Layout) error {
	mkErr := os.MkdirAll(filepath.Dir(path), renderDirPerm)
	if mkErr != nil {
		return fmt.Errorf("create output dir: %w", mkErr)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	renderErr := chart.RenderHTML(layout, renderTitle, f)
	closeErr := f.Close()

	if renderErr != nil {
		return fmt.Errorf("render html: %w", renderErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", path, closeErr)
	}

	return nil
}
