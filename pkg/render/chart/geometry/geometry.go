package geometry

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/fitcharts/pkg/dataset"
)

// Plot bounds, in percent of the plot area.
const (
	MinX         = 5.0
	MaxX         = 95.0
	TopY         = 20.0
	BaselineY    = 90.0
	MidY         = 50.0
	MinBarHeight = 2.0
	MaxBarHeight = 100.0
)

// Point is a derived coordinate for one item of a line or area series.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
	Name  string  `json:"name"`
}

// Points places items evenly across [MinX, MaxX] and scales each value
// against maxValue into [TopY, BaselineY]. A single item sits at MinX.
// When maxValue is not positive every point is placed at MidY.
func Points(items []dataset.Item, maxValue float64) []Point {
	pts := make([]Point, len(items))
	span := float64(max(len(items)-1, 1))
	for i, it := range items {
		pts[i] = Point{
			X:     MinX + (MaxX-MinX)*float64(i)/span,
			Y:     scaleY(it.Value, maxValue),
			Value: it.Value,
			Name:  it.Name,
		}
	}
	return pts
}

func scaleY(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return MidY
	}
	return BaselineY - (value/maxValue)*(BaselineY-TopY)
}

// BarHeight returns the height of a bar in percent of the plot height,
// clamped to [MinBarHeight, MaxBarHeight]. A non-positive maxValue yields
// MinBarHeight.
func BarHeight(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return MinBarHeight
	}
	return min(max(value/maxValue*100, MinBarHeight), MaxBarHeight)
}

// LinePath builds an SVG path that moves to the first point and draws
// straight segments to each following point. It returns "" for no points.
func LinePath(pts []Point) string {
	return linePath(pts, 1, 1)
}

// AreaPath builds the line path and closes it down to the baseline at the
// right and left plot bounds. It returns "" for no points.
func AreaPath(pts []Point) string {
	return areaPath(pts, 1, 1)
}

// ScaledLinePath is [LinePath] with coordinates multiplied by sx/100 and
// sy/100, converting percentages into pixels for a w x h plot.
func ScaledLinePath(pts []Point, w, h float64) string {
	return linePath(pts, w/100, h/100)
}

// ScaledAreaPath is [AreaPath] in pixel space for a w x h plot.
func ScaledAreaPath(pts []Point, w, h float64) string {
	return areaPath(pts, w/100, h/100)
}

func linePath(pts []Point, sx, sy float64) string {
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(num(p.X * sx))
		b.WriteByte(' ')
		b.WriteString(num(p.Y * sy))
	}
	return b.String()
}

func areaPath(pts []Point, sx, sy float64) string {
	line := linePath(pts, sx, sy)
	if line == "" {
		return ""
	}
	base := num(BaselineY * sy)
	return line + " L " + num(MaxX*sx) + " " + base + " L " + num(MinX*sx) + " " + base + " Z"
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
