package dataset

import (
	"math"
	"strconv"
)

// Finite returns v with every NaN or infinite float replaced by its string
// form ("NaN", "+Inf", "-Inf"), descending into maps and slices. Values that
// need no change are returned as is; containers are copied.
//
// TOML and Go callers can produce such floats, JSON cannot encode them.
// The string forms still coerce to 0 when used as chart values.
func Finite(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	case Record:
		return Record(finiteMap(x))
	case map[string]any:
		return finiteMap(x)
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, m := range x {
			out[i] = finiteMap(m)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Finite(e)
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Finite(e)
		}
		return out
	}
	return v
}

// FiniteRecords applies [Finite] to every record.
func FiniteRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record(finiteMap(r))
	}
	return out
}

func finiteMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = Finite(e)
	}
	return out
}
