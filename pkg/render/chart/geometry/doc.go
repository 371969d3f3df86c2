// Package geometry computes chart coordinates from normalized items.
//
// All coordinates are percentages of the plot area so that renderers can
// scale them to any pixel size. The horizontal axis spans [MinX, MaxX] and
// the vertical axis maps the largest value to [TopY] and zero to
// [BaselineY]; smaller Y means a higher value, as in SVG.
//
//	pts := geometry.Points(items, dataset.MaxValue(items))
//	d := geometry.LinePath(pts)   // "M 5 55 L 50 20 L 95 37.5"
//	a := geometry.AreaPath(pts)   // d + " L 95 90 L 5 90 Z"
//
// A series whose maximum is zero (or negative) has nothing to scale against
// and is drawn as a flat line at [MidY]. Bars never drop below
// [MinBarHeight] percent so zero values stay visible and clickable.
package geometry
