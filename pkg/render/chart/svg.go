package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
)

const (
	titleBand = 32.0 // space above the body when a title is set
	labelBand = 24.0 // space below bars for item names
)

const baseCSS = `
    .chart-title { font: 600 15px system-ui, sans-serif; }
    .bar-label, .point-label { font: 11px system-ui, sans-serif; }
    .bar-value { font: 600 11px system-ui, sans-serif; opacity: 0; transition: opacity 0.15s ease; pointer-events: none; }
    .bar:hover .bar-value { opacity: 1; }
    .bar-rect, .point circle { transition: opacity 0.15s ease; }
    .bar:hover .bar-rect, .point:hover circle { opacity: 0.8; }
    .chart-message { font: 13px system-ui, sans-serif; }
    a { cursor: pointer; }`

const animationCSS = `
    @keyframes fc-grow { from { transform: scaleY(0); } to { transform: scaleY(1); } }
    @keyframes fc-draw { to { stroke-dashoffset: 0; } }
    @keyframes fc-fade { from { opacity: 0; } to { opacity: 1; } }
    .animate .bar-rect { transform-origin: bottom; transform-box: fill-box; animation: fc-grow 0.6s ease-out; }
    .animate .line-path { stroke-dasharray: 3000; stroke-dashoffset: 3000; animation: fc-draw 1.2s ease-out forwards; }
    .animate .area-fill, .animate .point { animation: fc-fade 0.8s ease-out; }`

// escapeXML escapes s for use in SVG text and attribute values.
func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// wrapLink surrounds the output of fn with an anchor when url is set.
func wrapLink(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `<a href="%s" target="_top">`, escapeXML(url))
	}
	fn()
	if url != "" {
		buf.WriteString("</a>")
	}
}

// num formats a pixel coordinate with at most two decimals.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// FormatValue renders a data value the way it is shown on hover.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func styleAttr(css string) string {
	if css == "" {
		return ""
	}
	return fmt.Sprintf(` style="%s"`, escapeXML(css))
}
