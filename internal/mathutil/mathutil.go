package mathutil

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ParseFloat parses a user-entered number, trimming surrounding whitespace.
func ParseFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseFloatOr parses raw, returning fallback when it is not a number.
// Form fields that were cleared or half-typed fall back rather than fail.
func ParseFloatOr(raw string, fallback float64) float64 {
	if f, ok := ParseFloat(raw); ok {
		return f
	}
	return fallback
}

// Round rounds x to places decimal places, half away from zero on the
// shortest decimal representation of x (the way a display field shows it).
// Non-finite values are returned unchanged.
func Round(x float64, places int32) float64 {
	if !IsFinite(x) {
		return x
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// ApproxEqual reports whether a and b differ by at most tol.
func ApproxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
