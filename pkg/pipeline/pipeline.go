// Package pipeline runs the normalize → render pipeline shared by the CLI
// and the HTTP service.
//
// # Stages
//
//  1. Normalize: turn raw records into chart items ([dataset.Normalize])
//  2. Render: mount a chart shell and produce every requested format
//     (svg, json, png, pdf, txt)
//
// Both stages are cached. Keys combine a content hash of the records with
// the options that affect each stage's output, so a dataset edited by one
// field never reuses stale artifacts.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, records, pipeline.Options{
//	    Type:    "line",
//	    DataKey: "calories",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// [dataset.Normalize]: github.com/matzehuels/fitcharts/pkg/dataset.Normalize
package pipeline

import (
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fitcharts/pkg/cache"
	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/errors"
	"github.com/matzehuels/fitcharts/pkg/render/chart"
	"github.com/matzehuels/fitcharts/pkg/theme"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG pixel density multiplier.
	DefaultScale = 2.0

	// DefaultTextWidth and DefaultTextHeight size the terminal plot in cells.
	DefaultTextWidth  = 60
	DefaultTextHeight = 12

	// MaxDimension bounds width and height in pixels.
	MaxDimension = 10000.0

	// MaxScale bounds the PNG scale factor.
	MaxScale = 8.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatText: true,
}

// ContentTypes maps each format to its HTTP content type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatText: "text/plain; charset=utf-8",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// It is JSON tagged for API requests and BSON tagged for saved charts.
type Options struct {
	// Dataset options
	DataKey string `json:"data_key,omitempty" bson:"data_key,omitempty"`

	// Chart options
	Type      string       `json:"type,omitempty" bson:"type,omitempty"`
	Title     string       `json:"title,omitempty" bson:"title,omitempty"`
	Color     string       `json:"color,omitempty" bson:"color,omitempty"`
	Width     float64      `json:"width,omitempty" bson:"width,omitempty"`
	Height    float64      `json:"height,omitempty" bson:"height,omitempty"`
	ClassName string       `json:"class_name,omitempty" bson:"class_name,omitempty"`
	Styles    chart.Styles `json:"styles,omitempty" bson:"styles,omitempty"`
	Animate   bool         `json:"animate,omitempty" bson:"animate,omitempty"`
	Themed    bool         `json:"themed,omitempty" bson:"themed,omitempty"` // Derive background and grid from Color

	// LinkTemplate turns every bar or point into a link. The placeholders
	// {name}, {index} and {value} are replaced per item.
	LinkTemplate string `json:"link_template,omitempty" bson:"link_template,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty" bson:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty" bson:"scale,omitempty"`
	TextWidth  int      `json:"text_width,omitempty" bson:"text_width,omitempty"`
	TextHeight int      `json:"text_height,omitempty" bson:"text_height,omitempty"`
	Refresh    bool     `json:"refresh,omitempty" bson:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger       `json:"-" bson:"-"`
	IDs    chart.IDGenerator `json:"-" bson:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items are the normalized chart items.
	Items []dataset.Item

	// DatasetHash is the content hash of the input records.
	DatasetHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount   int
	ItemCount     int
	CoercedCount  int
	NormalizeTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ItemsHit  bool // Whether normalized items came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, png, pdf, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDimension checks a pixel width or height. Zero selects the default.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > MaxDimension {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be between 0 and %g", name, MaxDimension)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetRenderDefaults fills unset fields with their defaults.
// Unknown chart types resolve to bar, matching the chart shell.
func (o *Options) SetRenderDefaults() {
	if o.DataKey == "" {
		o.DataKey = chart.DefaultDataKey
	}
	o.Type = string(chart.ParseType(o.Type))
	if strings.TrimSpace(o.Color) == "" {
		o.Color = chart.DefaultColor
	}
	if o.Width == 0 {
		o.Width = chart.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = chart.DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.TextWidth <= 0 {
		o.TextWidth = DefaultTextWidth
	}
	if o.TextHeight <= 0 {
		o.TextHeight = DefaultTextHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies defaults and validates every field.
// This method is idempotent.
func (o *Options) ValidateForRender() error {
	if o.validated {
		return nil
	}
	o.SetRenderDefaults()
	if err := errors.ValidateDataKey(o.DataKey); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateDimension("width", o.Width); err != nil {
		return err
	}
	if err := ValidateDimension("height", o.Height); err != nil {
		return err
	}
	if math.IsNaN(o.Scale) || o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be between 0 and %g", MaxScale)
	}
	if err := errors.ValidateName(o.Title); err != nil {
		return err
	}
	if o.LinkTemplate != "" {
		if err := errors.ValidateURL(o.LinkTemplate); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ChartOptions converts the options into chart shell options.
func (o *Options) ChartOptions() []chart.Option {
	opts := []chart.Option{
		chart.WithType(chart.ParseType(o.Type)),
		chart.WithDataKey(o.DataKey),
		chart.WithTitle(o.Title),
		chart.WithColor(o.Color),
		chart.WithWidth(o.Width),
		chart.WithHeight(o.Height),
		chart.WithClassName(o.ClassName),
		chart.WithStyles(o.Styles),
	}
	if o.Animate {
		opts = append(opts, chart.WithAnimation())
	}
	if o.Themed {
		opts = append(opts, chart.WithPalette(theme.Derive(o.Color)))
	}
	if o.LinkTemplate != "" {
		opts = append(opts, chart.WithItemLink(LinkFunc(o.LinkTemplate)))
	}
	if o.IDs != nil {
		opts = append(opts, chart.WithIDGenerator(o.IDs))
	}
	return opts
}

// NewShell builds and mounts a chart shell for these options.
func (o *Options) NewShell() *chart.Shell {
	s := chart.NewShell(o.ChartOptions()...)
	s.Mount()
	return s
}

// ArtifactKeyOpts returns cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:       format,
		Type:         o.Type,
		DataKey:      o.DataKey,
		Title:        o.Title,
		Color:        o.Color,
		Width:        o.Width,
		Height:       o.Height,
		ClassName:    o.ClassName,
		Styles:       o.Styles.Container + "|" + o.Styles.Chart + "|" + o.Styles.Tooltip,
		Animate:      o.Animate,
		LinkTemplate: o.LinkTemplate,
		Themed:       o.Themed,
	}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatText:
		k.Width, k.Height = float64(o.TextWidth), float64(o.TextHeight)
	}
	return k
}

// LinkFunc expands a link template into an item link function.
// {name} is path-escaped; {index} is zero-based; {value} uses the chart's
// number formatting.
func LinkFunc(template string) chart.ItemLinkFunc {
	return func(i int, it dataset.Item) string {
		return strings.NewReplacer(
			"{name}", url.PathEscape(it.Name),
			"{index}", strconv.Itoa(i),
			"{value}", chart.FormatValue(it.Value),
		).Replace(template)
	}
}
