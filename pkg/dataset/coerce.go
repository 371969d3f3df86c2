package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces v to a finite float64.
// The second result is false when v had to be replaced by 0 because it was
// missing, non-numeric, NaN or infinite. A genuine zero reports true.
func ToNumber(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		return parseNumeric(n.String())
	case string:
		return parseNumeric(n)
	case []any:
		// Arrays convert through their string form, so only [] and [x] are numbers.
		switch len(n) {
		case 0:
			return 0, true
		case 1:
			switch e := n[0].(type) {
			case nil:
				return 0, true
			case bool:
				return 0, false
			default:
				return toFloat(e)
			}
		}
	}
	return 0, false
}

// parseNumeric follows browser Number() string rules closely enough for chart
// data: surrounding whitespace is ignored, the empty string is zero, hex
// literals are accepted, and anything else must be a full decimal literal.
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		u, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return float64(u), true
	}
	// ParseFloat accepts forms Number() rejects ("inf", "nan", underscores).
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") || strings.Contains(s, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
