package cli

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/errors"
	"github.com/matzehuels/fitcharts/pkg/httputil"
	fcio "github.com/matzehuels/fitcharts/pkg/io"
	"github.com/matzehuels/fitcharts/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	pipeline.Options

	formats     string // comma-separated output formats
	output      string // output file, or base path for several formats
	inputFormat string // dataset format when reading stdin or an unknown extension
	noCache     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset as a chart",
		Long: `Render a dataset (JSON, CSV or TOML) as a bar, line or area chart.

The dataset is a list of records. Each record is drawn as one bar or point,
named by its "name" or "label" field and sized by the field named with --key.
The dataset may be a file, an http(s) URL, or "-" for stdin.`,
		Example: `  fitcharts render week.json --type line --key calories
  fitcharts render steps.csv -k steps -f svg,png -o steps
  fitcharts render https://coach.example/export/week.csv -k calories
  cat week.json | fitcharts render - -f txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	addChartFlags(cmd, &opts.Options)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf, txt (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "dataset format: json, csv, toml (default from extension)")
	cmd.Flags().StringVar(&opts.LinkTemplate, "link", "", "link template for each bar or point, e.g. https://app/day/{name}")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// addChartFlags registers the flags shared by render and preview.
func addChartFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "bar", "chart type: bar, line, area")
	cmd.Flags().StringVarP(&opts.DataKey, "key", "k", "value", "record field holding the value")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title")
	cmd.Flags().StringVar(&opts.Color, "color", "", "series colour (default #4cc27d)")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "chart width in pixels (default 600)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "plot height in pixels (default 300)")
	cmd.Flags().BoolVar(&opts.Animate, "animate", false, "animate bars and lines on load")
	cmd.Flags().BoolVar(&opts.Themed, "themed", false, "derive background and grid colours from --color")
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	records, err := loadDataset(ctx, input, opts.inputFormat)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded dataset", "input", input, "records", len(records))

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if slices.Contains(opts.Formats, pipeline.FormatPNG) || slices.Contains(opts.Formats, pipeline.FormatPDF) {
		spinner = newSpinner(ctx, "Exporting with rsvg-convert...")
		spinner.Start()
	}
	result, err := runner.Execute(ctx, records, opts.Options)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	// A lone terminal plot goes to stdout unless a file is requested.
	if opts.output == "" && len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatText {
		_, err := os.Stdout.Write(result.Artifacts[pipeline.FormatText])
		return err
	}

	prog := newProgress(c.Logger)
	multi := len(opts.Formats) > 1
	for _, format := range opts.Formats {
		path := outputPath(opts.output, input, format, multi)
		if (input == "-" || httputil.IsURL(input)) && opts.output == "" {
			path = "chart." + format
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	prog.done("wrote outputs", "formats", opts.Formats)

	printStats(result.Stats.ItemCount, result.Stats.CoercedCount, result.CacheInfo.RenderHit)
	if input != "-" && !httputil.IsURL(input) {
		printNextStep("Preview in the terminal", fmt.Sprintf("%s preview %s -k %s", appName, input, opts.DataKey))
	}
	return nil
}

// loadDataset reads records from a file, an http(s) URL, or stdin for "-".
// A non-empty format overrides the detected one.
func loadDataset(ctx context.Context, input, format string) ([]dataset.Record, error) {
	var override fcio.Format
	if format != "" {
		var err error
		if override, err = fcio.ParseFormat(format); err != nil {
			return nil, err
		}
	}

	switch {
	case input == "-":
		return fcio.Read(os.Stdin, cmp.Or(override, fcio.FormatJSON))
	case httputil.IsURL(input):
		body, detected, err := httputil.Fetch(ctx, nil, input)
		if err != nil {
			return nil, err
		}
		return fcio.Read(bytes.NewReader(body), cmp.Or(override, detected))
	}
	if override == "" {
		return fcio.Import(input)
	}
	file, err := os.Open(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "open %s", input)
	}
	defer file.Close()
	return fcio.Read(file, override)
}
