package om

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseNumeric coerces a stored field value to a number. Strings are
// cleaned of unit suffixes and thousands separators ("1,234 sqft" parses
// as 1234). Returns nil on anything unparseable, never NaN, never an
// error: missing or malformed values only mean fewer populated fields.
func ParseNumeric(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		f := t
		return &f
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		cleaned := stripNonNumeric(t)
		if cleaned == "" {
			return nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return ParseNumeric(inner)
		}
		return nil
	default:
		return nil
	}
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CalculateAverage averages the numeric values produced by accessor,
// skipping anything unparseable. Nil for an empty valid set.
func CalculateAverage(items []any, accessor func(any) any) *float64 {
	if len(items) == 0 {
		return nil
	}
	sum := 0.0
	count := 0
	for _, item := range items {
		n := ParseNumeric(accessor(item))
		if n == nil {
			continue
		}
		sum += *n
		count++
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// percentage derives amount/total*100 rounded to one decimal, only when
// both sides are known and total is positive.
func percentage(amount, total *float64) *float64 {
	if amount == nil || total == nil || *total <= 0 {
		return nil
	}
	p := round1(*amount / *total * 100)
	return &p
}
