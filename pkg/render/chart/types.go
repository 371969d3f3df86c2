package chart

import (
	"math"
	"strings"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/theme"
)

// Type selects the visual encoding of a chart.
type Type string

// Supported chart types.
const (
	TypeBar  Type = "bar"
	TypeLine Type = "line"
	TypeArea Type = "area"
)

// Types lists every supported chart type.
var Types = []Type{TypeBar, TypeLine, TypeArea}

// ParseType maps s to a chart type. Unknown or empty values fall back to
// [TypeBar]; matching is case-insensitive.
func ParseType(s string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeBar, TypeLine, TypeArea:
		return t
	}
	return TypeBar
}

// Defaults applied by [NewShell].
const (
	DefaultColor   = theme.DefaultColor
	DefaultHeight  = 300.0
	DefaultWidth   = 600.0
	DefaultDataKey = "value"
)

// Styles holds optional inline CSS for the three regions of a chart.
type Styles struct {
	Container string `json:"container,omitempty" toml:"container" bson:"container,omitempty"`
	Chart     string `json:"chart,omitempty" toml:"chart" bson:"chart,omitempty"`
	Tooltip   string `json:"tooltip,omitempty" toml:"tooltip" bson:"tooltip,omitempty"`
}

// ItemLinkFunc returns the link target for an item, or "" for none.
type ItemLinkFunc func(index int, it dataset.Item) string

// Options configures a chart. Use the With* option functions with
// [NewShell] rather than filling this struct by hand.
type Options struct {
	Type      Type
	DataKey   string
	Title     string
	Color     string
	Height    float64
	Width     float64
	ClassName string
	Styles    Styles
	Animate   bool
	ItemLink  ItemLinkFunc
	Palette   *theme.Theme
	IDs       IDGenerator
}

// Option configures a [Shell].
type Option func(*Options)

func WithType(t Type) Option               { return func(o *Options) { o.Type = t } }
func WithDataKey(key string) Option        { return func(o *Options) { o.DataKey = key } }
func WithTitle(title string) Option        { return func(o *Options) { o.Title = title } }
func WithColor(color string) Option        { return func(o *Options) { o.Color = color } }
func WithHeight(h float64) Option          { return func(o *Options) { o.Height = h } }
func WithWidth(w float64) Option           { return func(o *Options) { o.Width = w } }
func WithClassName(name string) Option     { return func(o *Options) { o.ClassName = name } }
func WithStyles(s Styles) Option           { return func(o *Options) { o.Styles = s } }
func WithAnimation() Option                { return func(o *Options) { o.Animate = true } }
func WithIDGenerator(g IDGenerator) Option { return func(o *Options) { o.IDs = g } }

// WithItemLink makes every bar or point a link to the URL returned by fn.
func WithItemLink(fn ItemLinkFunc) Option { return func(o *Options) { o.ItemLink = fn } }

// WithPalette draws background, grid and labels from a derived theme.
func WithPalette(t theme.Theme) Option { return func(o *Options) { o.Palette = &t } }

func (o *Options) setDefaults() {
	o.Type = ParseType(string(o.Type))
	if o.DataKey == "" {
		o.DataKey = DefaultDataKey
	}
	if strings.TrimSpace(o.Color) == "" {
		o.Color = DefaultColor
	}
	if !usableSize(o.Height) {
		o.Height = DefaultHeight
	}
	if !usableSize(o.Width) {
		o.Width = DefaultWidth
	}
	if o.IDs == nil {
		o.IDs = UUIDs{}
	}
}

// usableSize reports whether v is a finite, positive pixel size.
func usableSize(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// colors resolves the non-series colours used by a chart.
type colors struct {
	background string
	label      string
	grid       string
	muted      string
}

func (o *Options) colors() colors {
	if o.Palette == nil {
		return colors{background: "#ffffff", label: "#4b5563", grid: "#e5e7eb", muted: "#9ca3af"}
	}
	return colors{
		background: o.Palette.Background,
		label:      theme.ContrastText(o.Palette.Background),
		grid:       o.Palette.Grid,
		muted:      o.Palette.Grid,
	}
}
