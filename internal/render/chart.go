// Package render draws a normalized performance table in the terminal: one
// line per symbol, a legend, gridlines, and a Y-range padded 5% beyond the
// observed extremes.
package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"stockcurve/internal/normalize"
)

var glyphs = []rune{'*', '+', 'x', 'o', '#', '@', '%', '~'}

const labelWidth = 8

// Chart renders the normalized series as an ASCII plot of the given plot
// area size (columns x rows, excluding labels and legend).
func Chart(res *normalize.Result, width, height int) string {
	tbl := res.Table
	if tbl.IsEmpty() || width < 10 || height < 3 {
		return ""
	}

	lo, hi := tbl.MinMax()
	// Pad the range 5% beyond observed min/max; the floor never goes
	// negative since prices are positive.
	yMin := math.Max(0, lo*0.95)
	yMax := hi * 1.05
	if yMax == yMin {
		yMax = yMin + 1
	}

	canvas := make([][]rune, height)
	for y := range canvas {
		canvas[y] = make([]rune, width)
		for x := range canvas[y] {
			canvas[y][x] = ' '
		}
	}

	// Horizontal gridlines on evenly spaced rows.
	gridStep := max(1, (height-1)/4)
	for y := 0; y < height; y += gridStep {
		for x := range canvas[y] {
			canvas[y][x] = '.'
		}
	}

	n := tbl.Len()
	toRow := func(v float64) int {
		frac := (v - yMin) / (yMax - yMin)
		row := int(math.Round(float64(height-1) * (1 - frac)))
		return min(max(row, 0), height-1)
	}

	for si, sym := range tbl.Symbols() {
		glyph := glyphs[si%len(glyphs)]
		col := tbl.Column(sym)
		for x := range width {
			idx := 0
			if width > 1 {
				idx = x * (n - 1) / (width - 1)
			}
			canvas[toRow(col[idx])][x] = glyph
		}
	}

	var b strings.Builder
	dates := tbl.Dates()
	fmt.Fprintf(&b, "Normalized Performance (%s to %s)\n",
		dates[0].Format(time.DateOnly), dates[n-1].Format(time.DateOnly))
	b.WriteString("Normalized Asset Worth (End Value = $1.00)\n")

	for y, row := range canvas {
		switch {
		case y == 0:
			fmt.Fprintf(&b, "%*.3f |%s\n", labelWidth, yMax, string(row))
		case y == height-1:
			fmt.Fprintf(&b, "%*.3f |%s\n", labelWidth, yMin, string(row))
		case y%gridStep == 0:
			v := yMax - (yMax-yMin)*float64(y)/float64(height-1)
			fmt.Fprintf(&b, "%*.3f |%s\n", labelWidth, v, string(row))
		default:
			fmt.Fprintf(&b, "%*s |%s\n", labelWidth, "", string(row))
		}
	}

	fmt.Fprintf(&b, "%*s +%s\n", labelWidth, "", strings.Repeat("-", width))
	fmt.Fprintf(&b, "%*s  %s%*s\n", labelWidth, "",
		dates[0].Format(time.DateOnly),
		max(width-10, 0), dates[n-1].Format(time.DateOnly))

	b.WriteString("\n")
	for si, sym := range tbl.Symbols() {
		fmt.Fprintf(&b, "  %c %s\n", glyphs[si%len(glyphs)], sym)
	}

	return b.String()
}

// Summary lists, per symbol, the dollars needed at the start of the range
// to end with $1.00.
func Summary(res *normalize.Result) string {
	var b strings.Builder
	b.WriteString("Initial investment required to reach $1.00 at end:\n")
	for _, sym := range res.Table.Symbols() {
		fmt.Fprintf(&b, "  %-8s $%.4f\n", sym, res.InitialValues[sym])
	}
	return b.String()
}
