package sink

import (
	"encoding/json"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/render/chart"
	"github.com/matzehuels/fitcharts/pkg/render/chart/geometry"
)

type jsonOutput struct {
	Type     string     `json:"type"`
	DataKey  string     `json:"data_key"`
	Title    string     `json:"title,omitempty"`
	Color    string     `json:"color"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	State    string     `json:"state"`
	MaxValue float64    `json:"max_value"`
	Coerced  int        `json:"coerced,omitempty"`
	Items    []jsonItem `json:"items"`
	Path     string     `json:"path,omitempty"`
	AreaPath string     `json:"area_path,omitempty"`
}

type jsonItem struct {
	Name      string         `json:"name"`
	Value     float64        `json:"value"`
	Label     string         `json:"label,omitempty"`
	Coerced   bool           `json:"coerced,omitempty"`
	BarHeight float64        `json:"bar_height,omitempty"`
	X         *float64       `json:"x,omitempty"`
	Y         *float64       `json:"y,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// RenderJSON exports what the shell would draw for items as a pretty-printed
// JSON document: resolved options, normalized items, and per-type geometry
// (bar heights for bar charts, points and paths for line and area charts).
// Paths are in percent units. It returns an error only if marshaling fails.
func RenderJSON(s *chart.Shell, items []dataset.Item) ([]byte, error) {
	o := s.Options()
	maxValue := dataset.MaxValue(items)

	out := jsonOutput{
		Type:     string(s.Type()),
		DataKey:  o.DataKey,
		Title:    o.Title,
		Color:    o.Color,
		Width:    o.Width,
		Height:   o.Height,
		State:    s.State(items).String(),
		MaxValue: maxValue,
		Coerced:  dataset.CoercedCount(items),
		Items:    make([]jsonItem, len(items)),
	}

	for i, it := range items {
		fields, _ := dataset.Finite(it.Fields).(map[string]any)
		out.Items[i] = jsonItem{
			Name:    it.Name,
			Value:   it.Value,
			Label:   it.Label,
			Coerced: it.Coerced,
			Fields:  fields,
		}
	}

	switch s.Type() {
	case chart.TypeLine, chart.TypeArea:
		pts := geometry.Points(items, maxValue)
		for i := range pts {
			out.Items[i].X = &pts[i].X
			out.Items[i].Y = &pts[i].Y
		}
		out.Path = geometry.LinePath(pts)
		if s.Type() == chart.TypeArea {
			out.AreaPath = geometry.AreaPath(pts)
		}
	default:
		for i, it := range items {
			out.Items[i].BarHeight = geometry.BarHeight(it.Value, maxValue)
		}
	}

	return json.MarshalIndent(out, "", "  ")
}
