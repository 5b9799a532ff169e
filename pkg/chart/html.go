package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	pieHeight = "600px"
	pieRadius = "65%"
)

// RenderHTML writes an interactive pie chart page of layout's entries, using the
// same colours as the SVG.
func RenderHTML(layout *Layout, title string, w io.Writer) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     formatNumber(layout.Width) + "px",
			Height:    pieHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d lines changed", layout.Total),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: "{b}: {c} lines ({d}%)",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
	)

	data := make([]opts.PieData, 0, len(layout.Entries))
	for _, entry := range layout.Entries {
		data = append(data, opts.PieData{
			Name:      entry.Name,
			Value:     entry.Lines,
			ItemStyle: &opts.ItemStyle{Color: entry.Color},
		})
	}

	pie.AddSeries("Lines changed", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {d}%",
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: pieRadius,
			}),
		)

	err := pie.Render(w)
	if err != nil {
		return fmt.Errorf("render html chart: %w", err)
	}

	return nil
}
