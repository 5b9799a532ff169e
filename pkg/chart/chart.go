// Package chart lays out per-language line counts as a stacked horizontal bar with a
// column legend and renders the result as SVG or an interactive HTML page.
package chart

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/Sumatoshi-tech/locstat/pkg/loc"
)

// ErrEmptyDataset is returned when no entry is left to draw after filtering.
var ErrEmptyDataset = errors.New("no entries left to chart")

// ellipsis marks a truncated legend name.
const ellipsis = "…"

// Colorer assigns display colours to language names.
type Colorer interface {
	ColorFor(name string) string
}

// Entry is one language in a chart.
type Entry struct {
	Name    string
	Lines   int
	Percent float64
	Color   string
}

// Options control filtering and geometry.
type Options struct {
	// Skip lists names that are never charted.
	Skip []string
	// MinLines drops entries with fewer lines. Values below 1 act as 1.
	MinLines int

	Width         float64
	MarginX       float64
	BarY          float64
	BarHeight     float64
	LegendGap     float64
	RowHeight     float64
	Columns       int
	ColumnWidth   float64
	MarkerRadius  float64
	NameLimit     int
	BottomPadding float64
	FontSize      float64
	FontFamily    string
	TextColor     string
}

// DefaultOptions returns the geometry of the published language charts.
func DefaultOptions() Options {
	return Options{
		MinLines:      1,
		Width:         800,
		MarginX:       10,
		BarY:          40,
		BarHeight:     50,
		LegendGap:     30,
		RowHeight:     20,
		Columns:       3,
		ColumnWidth:   250,
		MarkerRadius:  6,
		NameLimit:     12,
		BottomPadding: 50,
		FontSize:      15,
		FontFamily:    "sans-serif",
		TextColor:     "#FFF",
	}
}

// Segment is one entry's slice of the bar.
type Segment struct {
	Entry

	X     float64
	Width float64
}

// Cell is one entry's legend position.
type Cell struct {
	Entry

	Row     int
	Col     int
	MarkerX float64
	MarkerY float64
	TextX   float64
	TextY   float64
	Label   string
}

// Layout is the computed chart geometry.
type Layout struct {
	Width        float64
	Height       float64
	BarY         float64
	BarHeight    float64
	MarkerRadius float64
	FontSize     float64
	FontFamily   string
	TextColor    string

	Entries  []Entry
	Segments []Segment
	Cells    []Cell
	Rows     int
	Total    int
}

// Entries filters counts, computes percentages, and sorts by lines descending.
// Equal counts keep the order of counts. Colours are assigned when colors is not nil.
func Entries(counts *loc.Totals, opts Options, colors Colorer) ([]Entry, error) {
	minLines := max(opts.MinLines, 1)

	var (
		entries []Entry
		total   int
	)

	for name, lines := range counts.All() {
		if lines < minLines || slices.Contains(opts.Skip, name) {
			continue
		}

		entries = append(entries, Entry{Name: name, Lines: lines})
		total += lines
	}

	if len(entries) == 0 {
		return nil, ErrEmptyDataset
	}

	for i := range entries {
		entries[i].Percent = 100 * float64(entries[i].Lines) / float64(total)

		if colors != nil {
			entries[i].Color = colors.ColorFor(entries[i].Name)
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Lines - a.Lines
	})

	return entries, nil
}

// NewLayout computes the bar and legend geometry for counts.
func NewLayout(counts *loc.Totals, opts Options, colors Colorer) (*Layout, error) {
	if opts.Columns < 1 {
		return nil, fmt.Errorf("chart columns must be positive, got %d", opts.Columns)
	}

	entries, err := Entries(counts, opts, colors)
	if err != nil {
		return nil, err
	}

	rows := (len(entries) + opts.Columns - 1) / opts.Columns

	layout := &Layout{
		Width:        opts.Width + 2*opts.MarginX,
		Height:       opts.BarHeight + opts.LegendGap + float64(rows)*opts.RowHeight + opts.BottomPadding,
		BarY:         opts.BarY,
		BarHeight:    opts.BarHeight,
		MarkerRadius: opts.MarkerRadius,
		FontSize:     opts.FontSize,
		FontFamily:   opts.FontFamily,
		TextColor:    opts.TextColor,
		Entries:      entries,
		Segments:     make([]Segment, 0, len(entries)),
		Cells:        make([]Cell, 0, len(entries)),
		Rows:         rows,
	}

	right := opts.MarginX + opts.Width
	x := opts.MarginX

	for i, entry := range entries {
		width := opts.Width * entry.Percent / 100
		if i == len(entries)-1 {
			width = right - x
		}

		layout.Segments = append(layout.Segments, Segment{Entry: entry, X: x, Width: width})
		layout.Total += entry.Lines
		x += width
	}

	legendTop := opts.BarY + opts.BarHeight + opts.LegendGap

	for i, entry := range entries {
		row, col := i/opts.Columns, i%opts.Columns
		left := opts.MarginX + float64(col)*opts.ColumnWidth
		y := legendTop + float64(row)*opts.RowHeight

		layout.Cells = append(layout.Cells, Cell{
			Entry:   entry,
			Row:     row,
			Col:     col,
			MarkerX: left + opts.MarkerRadius,
			MarkerY: y - 4,
			TextX:   left + 2*opts.MarkerRadius + 5,
			TextY:   y,
			Label:   Label(entry, opts.NameLimit),
		})
	}

	return layout, nil
}

// Label formats a legend entry as "name (1.2k lines, 12.3%)".
func Label(entry Entry, nameLimit int) string {
	return fmt.Sprintf("%s (%s lines, %.1f%%)", Truncate(entry.Name, nameLimit), Abbreviate(entry.Lines), entry.Percent)
}

// Truncate shortens name to at most limit runes, replacing the tail with an ellipsis.
// A non-positive limit disables truncation.
func Truncate(name string, limit int) string {
	runes := []rune(name)
	if limit <= 0 || len(runes) <= limit {
		return name
	}

	return string(runes[:limit-1]) + ellipsis
}

// Abbreviate renders counts of a thousand or more in thousands. Only exact
// thousands drop the decimal: 1000 is "1k", 1234 is "1.2k", 1999 is "2.0k".
func Abbreviate(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}

	if n%1000 == 0 {
		return strconv.Itoa(n/1000) + "k"
	}

	tenths := math.Round(float64(n) / 100)

	return strconv.FormatFloat(tenths/10, 'f', 1, 64) + "k"
}
