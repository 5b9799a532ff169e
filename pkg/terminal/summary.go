package terminal

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Sumatoshi-tech/locstat/pkg/chart"
)

const (
	swatch        = "●"
	barFraction   = 4
	minBarWidth   = 10
	percentFactor = 100
)

// Summary writes one row per entry (colour swatch, language, lines, share, bar)
// followed by a total footer.
func Summary(w io.Writer, entries []chart.Entry, cfg Config) error {
	width := max(cfg.Width, MinWidth)
	barWidth := max(width/barFraction, minBarWidth)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"", "Language", "Lines", "Share", ""})

	total := 0

	for _, entry := range entries {
		total += entry.Lines

		tbl.AppendRow(table.Row{
			Swatch(entry.Color, cfg.NoColor),
			entry.Name,
			humanize.Comma(int64(entry.Lines)),
			fmt.Sprintf("%.1f%%", entry.Percent),
			DrawProgressBar(entry.Percent/percentFactor, barWidth),
		})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d languages", len(entries)), humanize.Comma(int64(total)), "", ""})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// Swatch paints a dot in hexColor. Unparsable colours and noColor give a plain dot.
func Swatch(hexColor string, noColor bool) string {
	c, err := colorful.Hex(hexColor)
	if err != nil || noColor {
		return swatch
	}

	r, g, b := c.RGB255()

	painter := color.RGB(int(r), int(g), int(b))
	painter.EnableColor()

	return painter.Sprint(swatch)
}
