// Package chart renders labelled numeric series as standalone SVG charts.
//
// # Overview
//
// A chart is drawn in three steps, all synchronous and side-effect free:
//
//  1. Raw records are normalized by [dataset.Normalize].
//  2. For line and area charts, [geometry.Points] derives percent coordinates.
//  3. One [Variant] ([Bar], [Line] or [Area]) writes the SVG elements.
//
// The [Shell] wraps these steps with sizing, the optional title, and the
// empty, loading and not-yet-mounted presentations.
//
// # Usage
//
//	s := chart.NewShell(
//	    chart.WithType(chart.TypeArea),
//	    chart.WithDataKey("kcal"),
//	    chart.WithTitle("Daily calories"),
//	    chart.WithColor("#4cc27d"),
//	)
//	s.Mount()
//	svg := s.RenderRecords(records)
//
// # Mounting
//
// A Shell is created unmounted and renders a same-sized placeholder until
// [Shell.Mount] is called. Mount happens once and cannot be undone. Callers
// that render server-side mount immediately; callers that stream a page
// shell first can send the placeholder and swap in the mounted output later.
//
// # Failure Policy
//
// Nothing in this package returns an error. Non-numeric values render as
// zero, an unknown chart type renders as a bar chart, an all-zero series
// renders flat, and no data renders the empty state.
//
// # Identifiers
//
// Area charts need a gradient definition with a document-unique id. Ids come
// from an [IDGenerator]: random UUIDs by default, or a [Sequence] when
// reproducible output matters (tests, caching).
//
// [dataset.Normalize]: github.com/matzehuels/fitcharts/pkg/dataset.Normalize
// [geometry.Points]: github.com/matzehuels/fitcharts/pkg/render/chart/geometry.Points
package chart
