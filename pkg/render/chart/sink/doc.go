// Package sink provides output formats for charts beyond plain SVG.
//
// # Overview
//
// A [chart.Shell] always produces SVG. A "sink" turns the same shell and
// items into another format:
//
//   - JSON: normalized items plus the derived geometry, for clients that
//     draw their own charts or want to inspect what would be drawn
//   - PNG and PDF: the SVG converted with rsvg-convert
//   - Text: a plot made of terminal characters, used by the CLI preview
//
// Basic usage:
//
//	data, err := sink.RenderJSON(shell, items)
//	png, err := sink.RenderPNG(ctx, shell, items, sink.WithScale(2))
//	txt := sink.RenderText(items, chart.TypeArea, 60, 12)
//
// # Adding New Formats
//
//  1. Create a renderer function taking the shell and the normalized items.
//  2. Define option types for configuration if needed.
//  3. Register the format in pkg/pipeline so the CLI and server pick it up.
//
// [chart.Shell]: github.com/matzehuels/fitcharts/pkg/render/chart.Shell
package sink
