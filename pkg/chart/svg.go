package chart

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"text/template"
)

//go:embed templates/chart.svg.tmpl
var chartTemplate string

var chartTmpl = template.Must(
	template.New("chart").
		Funcs(template.FuncMap{
			"num": formatNumber,
		}).
		Parse(chartTemplate),
)

// RenderSVG renders layout as a standalone SVG document.
func RenderSVG(layout *Layout) ([]byte, error) {
	var buf bytes.Buffer

	err := chartTmpl.Execute(&buf, layout)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}

	return buf.Bytes(), nil
}

// formatNumber prints coordinates with at most two decimals and no trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
