package dataset

import "fmt"

// DefaultName is used when a record carries neither a name nor a label.
const DefaultName = "Item"

// Field names read from every record.
const (
	FieldName  = "name"
	FieldLabel = "label"
)

// Record is a single raw data point as supplied by a caller.
type Record map[string]any

// Item is a normalized data point ready for rendering.
type Item struct {
	Name    string         `json:"name"`
	Value   float64        `json:"value"`
	Label   string         `json:"label,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`  // all original fields, non-finite floats as strings
	Coerced bool           `json:"coerced,omitempty"` // value was not a usable number and became 0
}

// Normalize converts records into items using dataKey as the value field.
// It never fails: missing names fall back to the label and then to
// [DefaultName], and unusable values become 0. The result is never nil.
func Normalize(records []Record, dataKey string) []Item {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, normalizeRecord(r, dataKey))
	}
	return items
}

// NormalizeAny normalizes decoded data of unknown shape. Anything that is not
// a slice yields an empty result. Slice elements that are not objects are
// kept as empty records so they still render (with value 0).
func NormalizeAny(data any, dataKey string) []Item {
	return Normalize(Records(data), dataKey)
}

// Records converts decoded data of unknown shape into records.
// It returns an empty, non-nil slice for anything that is not a slice.
func Records(data any) []Record {
	switch v := data.(type) {
	case []Record:
		return v
	case []map[string]any:
		out := make([]Record, len(v))
		for i, m := range v {
			out[i] = Record(m)
		}
		return out
	case []any:
		out := make([]Record, len(v))
		for i, e := range v {
			switch m := e.(type) {
			case map[string]any:
				out[i] = Record(m)
			case Record:
				out[i] = m
			default:
				out[i] = Record{}
			}
		}
		return out
	}
	return []Record{}
}

// MaxValue returns the largest value among items, or 0 if items is empty.
func MaxValue(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	m := items[0].Value
	for _, it := range items[1:] {
		m = max(m, it.Value)
	}
	return m
}

// CoercedCount reports how many items had their value coerced to zero.
func CoercedCount(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Coerced {
			n++
		}
	}
	return n
}

func normalizeRecord(r Record, dataKey string) Item {
	value, ok := ToNumber(r[dataKey])
	it := Item{
		Name:    displayName(r),
		Value:   value,
		Coerced: !ok,
	}
	if label, present := r[FieldLabel]; present && label != nil {
		it.Label = stringify(label)
	}
	if len(r) > 0 {
		it.Fields = finiteMap(r)
	}
	return it
}

func displayName(r Record) string {
	if v, ok := r[FieldName]; ok && v != nil {
		return stringify(v)
	}
	if v, ok := r[FieldLabel]; ok && v != nil {
		return stringify(v)
	}
	return DefaultName
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
