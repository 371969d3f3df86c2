package chart

import (
	"bytes"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/matzehuels/fitcharts/pkg/dataset"
)

// State is the presentation state of a [Shell] for a given data set.
type State int

const (
	// StateNotMounted renders a static placeholder.
	StateNotMounted State = iota
	// StateEmpty renders the "no data" message.
	StateEmpty
	// StateWithData delegates to the selected variant.
	StateWithData
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotMounted:
		return "not-mounted"
	case StateEmpty:
		return "empty"
	case StateWithData:
		return "with-data"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Messages shown by the empty and loading states.
const (
	EmptyMessage   = "No data available"
	LoadingMessage = "Loading chart…"
)

// Shell is the outer container of a chart. It owns the resolved options,
// the mount gate, and the empty and loading presentations.
//
// A Shell starts unmounted and renders only a static placeholder of the
// final size. [Shell.Mount] flips it to ready exactly once; there is no way
// back. A Shell is safe for concurrent use once constructed.
type Shell struct {
	opts    Options
	variant Variant
	mounted atomic.Bool
}

// NewShell creates an unmounted shell with defaults applied for anything the
// options leave unset.
func NewShell(opts ...Option) *Shell {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.setDefaults()
	return &Shell{opts: o, variant: VariantFor(o.Type)}
}

// Mount marks the shell ready to render data. It reports whether this call
// performed the transition; later calls are no-ops that return false.
func (s *Shell) Mount() bool {
	return s.mounted.CompareAndSwap(false, true)
}

// Mounted reports whether [Shell.Mount] has been called.
func (s *Shell) Mounted() bool {
	return s.mounted.Load()
}

// Options returns a copy of the resolved options.
func (s *Shell) Options() Options {
	return s.opts
}

// Type returns the chart type that will be drawn.
func (s *Shell) Type() Type {
	return s.variant.Type()
}

// State reports which presentation Render would produce for items.
func (s *Shell) State(items []dataset.Item) State {
	switch {
	case !s.Mounted():
		return StateNotMounted
	case len(items) == 0:
		return StateEmpty
	default:
		return StateWithData
	}
}

// RenderRecords normalizes raw records with the configured data key and
// renders them.
func (s *Shell) RenderRecords(records []dataset.Record) []byte {
	return s.Render(dataset.Normalize(records, s.opts.DataKey))
}

// Render draws items as a complete SVG document. It never fails: missing
// data produces the empty state and an unmounted shell produces a placeholder.
func (s *Shell) Render(items []dataset.Item) []byte {
	var buf bytes.Buffer
	state := s.State(items)
	s.open(&buf, state.String())

	switch state {
	case StateNotMounted:
		s.renderPlaceholder(&buf)
	case StateEmpty:
		s.renderMessage(&buf, EmptyMessage, true)
	case StateWithData:
		s.variant.Render(&buf, s.frame(), items)
	}

	s.close(&buf)
	return buf.Bytes()
}

// RenderLoading draws the loading presentation at the chart's size.
func (s *Shell) RenderLoading() []byte {
	var buf bytes.Buffer
	s.open(&buf, "loading")
	s.renderMessage(&buf, LoadingMessage, false)
	s.close(&buf)
	return buf.Bytes()
}

// TotalHeight is the full SVG height: the body plus the title band, if any.
func (s *Shell) TotalHeight() float64 {
	if s.opts.Title != "" {
		return s.opts.Height + titleBand
	}
	return s.opts.Height
}

func (s *Shell) frame() Frame {
	return Frame{
		Width:        s.opts.Width,
		Height:       s.opts.Height,
		Color:        s.opts.Color,
		TooltipStyle: s.opts.Styles.Tooltip,
		ItemLink:     s.opts.ItemLink,
		IDs:          s.opts.IDs,
		colors:       s.opts.colors(),
	}
}

func (s *Shell) classes(state string) string {
	cls := []string{"fitchart", "fitchart-" + string(s.Type()), "fitchart-" + state}
	if s.opts.Animate {
		cls = append(cls, "animate")
	}
	if s.opts.ClassName != "" {
		cls = append(cls, s.opts.ClassName)
	}
	return strings.Join(cls, " ")
}

func (s *Shell) open(buf *bytes.Buffer, state string) {
	w, h := s.opts.Width, s.TotalHeight()
	c := s.opts.colors()

	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" class="%s" role="img"`,
		num(w), num(h), num(w), num(h), escapeXML(s.classes(state)))
	if s.opts.Title != "" {
		fmt.Fprintf(buf, ` aria-label="%s"`, escapeXML(s.opts.Title))
	}
	buf.WriteString(styleAttr(s.opts.Styles.Container))
	buf.WriteString(">\n")

	css := baseCSS
	if s.opts.Animate {
		css += animationCSS
	}
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", css)
	fmt.Fprintf(buf, `  <rect class="chart-background" width="%s" height="%s" fill="%s" />`+"\n", num(w), num(h), c.background)

	if s.opts.Title != "" {
		fmt.Fprintf(buf, `  <text class="chart-title" x="4" y="20" fill="%s">%s</text>`+"\n", c.label, escapeXML(s.opts.Title))
		fmt.Fprintf(buf, `  <g class="chart-body" transform="translate(0,%s)"%s>`+"\n", num(titleBand), styleAttr(s.opts.Styles.Chart))
	} else {
		fmt.Fprintf(buf, `  <g class="chart-body"%s>`+"\n", styleAttr(s.opts.Styles.Chart))
	}
}

func (s *Shell) close(buf *bytes.Buffer) {
	buf.WriteString("  </g>\n</svg>\n")
}

func (s *Shell) renderPlaceholder(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <rect class="chart-placeholder" width="%s" height="%s" rx="8" fill="%s" />`+"\n",
		num(s.opts.Width), num(s.opts.Height), s.opts.colors().background)
}

func (s *Shell) renderMessage(buf *bytes.Buffer, msg string, dashed bool) {
	c := s.opts.colors()
	w, h := s.opts.Width, s.opts.Height
	if dashed {
		fmt.Fprintf(buf, `  <rect class="chart-empty" x="1" y="1" width="%s" height="%s" rx="8" fill="none" stroke="%s" stroke-width="2" stroke-dasharray="6 4" />`+"\n",
			num(w-2), num(h-2), c.muted)
	} else {
		fmt.Fprintf(buf, `  <rect class="chart-loading" width="%s" height="%s" rx="8" fill="%s" />`+"\n",
			num(w), num(h), c.grid)
	}
	fmt.Fprintf(buf, `  <text class="chart-message" x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
		num(w/2), num(h/2), c.label, escapeXML(msg))
}
