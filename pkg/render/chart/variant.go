package chart

import (
	"bytes"

	"github.com/matzehuels/fitcharts/pkg/dataset"
)

// Variant draws one chart type into the body of an SVG document.
// Implementations are stateless; everything they need arrives in the Frame.
type Variant interface {
	// Type reports which chart type the variant draws.
	Type() Type
	// Render writes the SVG elements for items. items is never empty.
	Render(buf *bytes.Buffer, f Frame, items []dataset.Item)
}

// Frame carries the resolved layout and options a variant renders into.
// Coordinates are in pixels relative to the chart body.
type Frame struct {
	Width, Height float64
	Color         string
	TooltipStyle  string
	ItemLink      ItemLinkFunc
	IDs           IDGenerator
	colors        colors
}

func (f Frame) link(i int, it dataset.Item) string {
	if f.ItemLink == nil {
		return ""
	}
	return f.ItemLink(i, it)
}

var variants = map[Type]Variant{
	TypeBar:  Bar{},
	TypeLine: Line{},
	TypeArea: Area{},
}

// VariantFor returns the variant for t. Unknown types get the bar variant.
func VariantFor(t Type) Variant {
	if v, ok := variants[ParseType(string(t))]; ok {
		return v
	}
	return Bar{}
}
