package chart

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/render/chart/geometry"
)

// Gradient stop opacities, top to bottom.
const (
	areaTopOpacity    = 0.4
	areaBottomOpacity = 0.05
)

// Area draws the line variant and fills the region beneath it down to the
// baseline with a vertical gradient of the series colour.
type Area struct{}

// Type returns [TypeArea].
func (Area) Type() Type { return TypeArea }

// Render writes the gradient definition, the filled area, the outline and
// the point markers.
func (Area) Render(buf *bytes.Buffer, f Frame, items []dataset.Item) {
	pts := geometry.Points(items, dataset.MaxValue(items))
	gradID := f.IDs.NewID("area-gradient")
	color := escapeXML(f.Color)

	fmt.Fprintf(buf, `  <defs><linearGradient id="%s" x1="0" y1="0" x2="0" y2="1">`, gradID)
	fmt.Fprintf(buf, `<stop offset="0%%" stop-color="%s" stop-opacity="%s" />`, color, FormatValue(areaTopOpacity))
	fmt.Fprintf(buf, `<stop offset="100%%" stop-color="%s" stop-opacity="%s" />`, color, FormatValue(areaBottomOpacity))
	buf.WriteString("</linearGradient></defs>\n")

	renderBaseline(buf, f)
	fmt.Fprintf(buf, `  <path class="area-fill" d="%s" fill="url(#%s)" stroke="none" />`+"\n",
		geometry.ScaledAreaPath(pts, f.Width, f.Height), gradID)
	fmt.Fprintf(buf, `  <path class="line-path" d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round" />`+"\n",
		geometry.ScaledLinePath(pts, f.Width, f.Height), color)
	renderPoints(buf, f, items, pts)
}
