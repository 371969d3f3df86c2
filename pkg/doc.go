// Package pkg provides the core libraries for fitcharts.
//
// # Overview
//
// fitcharts turns activity and nutrition records into bar, line and area
// charts for trainer dashboards and client portals. Records arrive as loose
// JSON, CSV or TOML; every record becomes one bar or point, and values that
// are not usable numbers are drawn as 0 instead of failing the chart.
//
// The typical data flow:
//
//	JSON / CSV / TOML dataset
//	         ↓
//	    [io] (decode records)
//	         ↓
//	    [dataset] (normalize to name/value items)
//	         ↓
//	    [render/chart] (mounted shell → bar, line or area variant)
//	         ↓
//	    SVG, JSON, PNG, PDF or terminal plot
//
// # Quick Start
//
//	records, _ := io.Import("week.json")
//	items := dataset.Normalize(records, "calories")
//
//	shell := chart.NewShell(
//	    chart.WithType(chart.TypeLine),
//	    chart.WithTitle("Calories this week"),
//	)
//	shell.Mount()
//	svg := shell.Render(items)
//
// # Main Packages
//
// ## Charts
//
// [dataset] - Normalizes raw records into chart items. Names come from the
// "name" or "label" field; values use lenient numeric coercion.
//
// [render/chart] - The chart shell and its renderer variants. The shell
// renders a placeholder until mounted, an empty state for no items, and
// otherwise delegates to the variant for its chart type.
//
// [render/chart/geometry] - Percent-space coordinates, bar heights and SVG
// path strings shared by the variants and the JSON export.
//
// [render/chart/sink] - Output formats besides SVG: JSON geometry, PNG and
// PDF through rsvg-convert, and terminal plots.
//
// [theme] - Derives a dashboard palette (accent, text, grid) from one brand
// colour.
//
// ## Orchestration
//
// [pipeline] - normalize → render with caching, shared by the CLI and the
// HTTP service so both produce identical output for the same options.
//
// [io] - Dataset decoding for JSON, CSV and TOML files.
//
// [httputil] - Remote dataset downloads with retry.
//
// ## Infrastructure
//
// [cache] - Content-addressed caching of items and artifacts: file cache for
// the CLI, Redis for the service.
//
// [storage] - Saved chart documents in memory or MongoDB.
//
// [observability] - Hooks for pipeline, cache and HTTP events. The service
// exports them as Prometheus metrics.
//
// [errors] - Error codes and input validation.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/render/chart/...       # Chart rendering
//
// [io]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/io
// [dataset]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/dataset
// [render/chart]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/render/chart
// [render/chart/geometry]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/render/chart/geometry
// [render/chart/sink]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/render/chart/sink
// [theme]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/theme
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/pipeline
// [httputil]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/httputil
// [cache]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/storage
// [observability]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/fitcharts/pkg/buildinfo
package pkg
