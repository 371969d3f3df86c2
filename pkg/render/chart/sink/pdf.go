package sink

import (
	"context"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/render"
	"github.com/matzehuels/fitcharts/pkg/render/chart"
)

// RenderPDF renders the chart as a single-page PDF via SVG conversion.
func RenderPDF(ctx context.Context, s *chart.Shell, items []dataset.Item) ([]byte, error) {
	return render.ToPDF(ctx, s.Render(items))
}
