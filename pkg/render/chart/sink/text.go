package sink

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/render/chart"
	"github.com/matzehuels/fitcharts/pkg/render/chart/geometry"
)

// Glyphs used by RenderText.
const (
	glyphBar   = "█"
	glyphPoint = "●"
	glyphLine  = "·"
	glyphFill  = "░"
	glyphEmpty = " "
)

const (
	minTextWidth  = 10
	minTextHeight = 4
)

// RenderText draws items as a plot of width x height terminal cells.
// Bar charts are drawn as one horizontal bar per item; line and area charts
// are drawn on a character grid using the same geometry as the SVG output.
// Empty input renders the empty-state message.
func RenderText(items []dataset.Item, t chart.Type, width, height int) string {
	if len(items) == 0 {
		return chart.EmptyMessage + "\n"
	}
	width = max(width, minTextWidth)
	height = max(height, minTextHeight)

	switch chart.ParseType(string(t)) {
	case chart.TypeLine:
		return textGrid(items, width, height, false)
	case chart.TypeArea:
		return textGrid(items, width, height, true)
	default:
		return textBars(items, width)
	}
}

func textBars(items []dataset.Item, width int) string {
	maxValue := dataset.MaxValue(items)
	nameW := 0
	valueW := 0
	for _, it := range items {
		nameW = max(nameW, len([]rune(it.Name)))
		valueW = max(valueW, len(chart.FormatValue(it.Value)))
	}
	nameW = min(nameW, width/3)
	barW := max(width-nameW-valueW-2, 1)

	var b strings.Builder
	for _, it := range items {
		pct := geometry.BarHeight(it.Value, maxValue)
		n := max(int(math.Round(pct/100*float64(barW))), 1)
		fmt.Fprintf(&b, "%-*s %s%s %s\n",
			nameW, truncate(it.Name, nameW),
			strings.Repeat(glyphBar, n), strings.Repeat(glyphEmpty, barW-n),
			chart.FormatValue(it.Value))
	}
	return b.String()
}

func textGrid(items []dataset.Item, width, height int, fill bool) string {
	pts := geometry.Points(items, dataset.MaxValue(items))
	grid := make([][]string, height)
	for r := range grid {
		grid[r] = make([]string, width)
		for c := range grid[r] {
			grid[r][c] = glyphEmpty
		}
	}

	col := func(x float64) int {
		return clampInt(int(math.Round((x-geometry.MinX)/(geometry.MaxX-geometry.MinX)*float64(width-1))), 0, width-1)
	}
	row := func(y float64) int {
		return clampInt(int(math.Round((y-geometry.TopY)/(geometry.BaselineY-geometry.TopY)*float64(height-1))), 0, height-1)
	}

	// Interpolate between neighbouring points column by column.
	rowAt := make([]int, width)
	for c := range rowAt {
		rowAt[c] = -1
	}
	for i := range pts {
		c0, r0 := col(pts[i].X), row(pts[i].Y)
		if i == len(pts)-1 {
			rowAt[c0] = r0
			break
		}
		c1, r1 := col(pts[i+1].X), row(pts[i+1].Y)
		for c := c0; c <= c1; c++ {
			t := 0.0
			if c1 > c0 {
				t = float64(c-c0) / float64(c1-c0)
			}
			rowAt[c] = int(math.Round(float64(r0) + t*float64(r1-r0)))
		}
	}

	for c, r := range rowAt {
		if r < 0 {
			continue
		}
		grid[r][c] = glyphLine
		if fill {
			for below := r + 1; below < height; below++ {
				grid[below][c] = glyphFill
			}
		}
	}
	for _, p := range pts {
		grid[row(p.Y)][col(p.X)] = glyphPoint
	}

	var b strings.Builder
	for _, line := range grid {
		b.WriteString(strings.TrimRight(strings.Join(line, ""), " "))
		b.WriteByte('\n')
	}
	b.WriteString(axisLabels(pts, width, col))
	return b.String()
}

// axisLabels places item names under their columns, skipping any that would
// overlap the previous label.
func axisLabels(pts []geometry.Point, width int, col func(float64) int) string {
	line := []rune(strings.Repeat(" ", width))
	next := 0
	for _, p := range pts {
		name := []rune(p.Name)
		start := clampInt(col(p.X)-len(name)/2, 0, max(width-len(name), 0))
		if start < next {
			continue
		}
		for i, r := range name {
			if start+i < width {
				line[start+i] = r
			}
		}
		next = start + len(name) + 1
	}
	return strings.TrimRight(string(line), " ") + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
