package chart

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/render/chart/geometry"
)

// barFill is the share of each slot taken by its bar.
const barFill = 0.6

// Bar draws one vertical bar per item, scaled against the series maximum.
// Every bar is at least geometry.MinBarHeight percent tall.
type Bar struct{}

// Type returns [TypeBar].
func (Bar) Type() Type { return TypeBar }

// Render writes one group per item: the bar, a value label revealed on
// hover, and the item name below the plot.
func (Bar) Render(buf *bytes.Buffer, f Frame, items []dataset.Item) {
	maxValue := dataset.MaxValue(items)
	plotH := max(f.Height-labelBand, 1)
	slot := f.Width / float64(len(items))
	barW := slot * barFill

	fmt.Fprintf(buf, `  <line class="baseline" x1="0" y1="%s" x2="%s" y2="%s" stroke="%s" />`+"\n",
		num(plotH), num(f.Width), num(plotH), f.colors.grid)

	for i, it := range items {
		pct := geometry.BarHeight(it.Value, maxValue)
		h := pct / 100 * plotH
		x := float64(i)*slot + (slot-barW)/2
		y := plotH - h
		cx := x + barW/2
		value := FormatValue(it.Value)

		wrapLink(buf, f.link(i, it), func() {
			fmt.Fprintf(buf, `  <g class="bar" data-index="%d" data-name="%s" data-height="%s">`,
				i, escapeXML(it.Name), num(pct))
			fmt.Fprintf(buf, `<rect class="bar-rect" x="%s" y="%s" width="%s" height="%s" rx="3" fill="%s"><title>%s</title></rect>`,
				num(x), num(y), num(barW), num(h), escapeXML(f.Color), value)
			fmt.Fprintf(buf, `<text class="bar-value" x="%s" y="%s" text-anchor="middle" fill="%s"%s>%s</text>`,
				num(cx), num(max(y-4, 10)), f.colors.label, styleAttr(f.TooltipStyle), value)
			fmt.Fprintf(buf, `<text class="bar-label" x="%s" y="%s" text-anchor="middle" fill="%s">%s</text>`,
				num(cx), num(f.Height-6), f.colors.label, escapeXML(it.Name))
			buf.WriteString("</g>")
		})
		buf.WriteString("\n")
	}
}
