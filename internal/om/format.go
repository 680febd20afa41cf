package om

import (
	"math"
	"strconv"
	"strings"
)

// Formatting helpers shared by the normalizer and dashboard consumers.
// Each returns nil, not a string, for a nil input, so renderers can
// distinguish "no data" from a real zero.

func FormatFixed(v *float64, decimals int) *string {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	s := strconv.FormatFloat(*v, 'f', decimals, 64)
	return &s
}

// FormatLocale renders a number with comma thousand separators, rounded
// to the nearest integer ("1234567" -> "1,234,567").
func FormatLocale(v *float64) *string {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	s := groupThousands(math.Round(*v))
	return &s
}

func FormatCurrency(v *float64) *string {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	s := "$" + groupThousands(math.Round(*v))
	return &s
}

func FormatPercentage(v *float64, decimals int) *string {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	s := strconv.FormatFloat(*v, 'f', decimals, 64) + "%"
	return &s
}

func groupThousands(v float64) string {
	neg := v < 0
	digits := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}
