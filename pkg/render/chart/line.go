package chart

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/render/chart/geometry"
)

const markerRadius = 4.0

// Line draws the series as a polyline with a circle marker per item.
type Line struct{}

// Type returns [TypeLine].
func (Line) Type() Type { return TypeLine }

// Render writes the line path followed by the point markers.
func (Line) Render(buf *bytes.Buffer, f Frame, items []dataset.Item) {
	pts := geometry.Points(items, dataset.MaxValue(items))
	renderBaseline(buf, f)
	fmt.Fprintf(buf, `  <path class="line-path" d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round" />`+"\n",
		geometry.ScaledLinePath(pts, f.Width, f.Height), escapeXML(f.Color))
	renderPoints(buf, f, items, pts)
}

func renderBaseline(buf *bytes.Buffer, f Frame) {
	y := geometry.BaselineY / 100 * f.Height
	fmt.Fprintf(buf, `  <line class="baseline" x1="0" y1="%s" x2="%s" y2="%s" stroke="%s" />`+"\n",
		num(y), num(f.Width), num(y), f.colors.grid)
}

// renderPoints writes a marker titled "name: value" and a name label per point.
func renderPoints(buf *bytes.Buffer, f Frame, items []dataset.Item, pts []geometry.Point) {
	for i, p := range pts {
		cx := p.X / 100 * f.Width
		cy := p.Y / 100 * f.Height
		wrapLink(buf, f.link(i, items[i]), func() {
			fmt.Fprintf(buf, `  <g class="point" data-index="%d" data-name="%s" data-x="%s" data-y="%s">`,
				i, escapeXML(p.Name), num(p.X), num(p.Y))
			fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="2"><title>%s: %s</title></circle>`,
				num(cx), num(cy), num(markerRadius), escapeXML(f.Color), f.colors.background,
				escapeXML(p.Name), FormatValue(p.Value))
			fmt.Fprintf(buf, `<text class="point-label" x="%s" y="%s" text-anchor="middle" fill="%s">%s</text>`,
				num(cx), num(f.Height-6), f.colors.label, escapeXML(p.Name))
			buf.WriteString("</g>")
		})
		buf.WriteString("\n")
	}
}
