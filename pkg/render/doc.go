// Package render provides format conversion shared by all chart outputs.
//
// Charts are always drawn as SVG first (see the [chart] subpackage). The
// [ToPDF] and [ToPNG] functions convert that SVG with the external
// rsvg-convert tool from librsvg:
//
//	svg := shell.Render(items)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Subpackages:
//   - [chart]: shell, variants (bar, line, area) and options
//   - [chart/geometry]: percent-based coordinates and SVG paths
//   - [chart/sink]: JSON, PNG, PDF and terminal outputs
//
// [chart]: github.com/matzehuels/fitcharts/pkg/render/chart
// [chart/geometry]: github.com/matzehuels/fitcharts/pkg/render/chart/geometry
// [chart/sink]: github.com/matzehuels/fitcharts/pkg/render/chart/sink
package render
