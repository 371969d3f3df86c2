package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/errors"
	"github.com/matzehuels/fitcharts/pkg/render/chart/sink"
)

// Render generates output artifacts in the requested formats.
// All formats are drawn from one mounted shell.
func Render(ctx context.Context, items []dataset.Item, opts Options) (map[string][]byte, error) {
	shell := opts.NewShell()
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = shell.Render(items)
		case FormatJSON:
			data, err = sink.RenderJSON(shell, items)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, shell, items, sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, shell, items)
		case FormatText:
			data = []byte(sink.RenderText(items, shell.Type(), opts.TextWidth, opts.TextHeight))
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
