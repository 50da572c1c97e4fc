// Package normalize converts loosely-typed upstream JSON values into strict
// domain types. Upstream feeds mix numbers, numeric strings with thousands
// separators, nulls, and absent keys for the same field depending on the day.
//
// Every function is total: malformed input degrades to the zero value and
// ok=false so the caller can log a warning. Nothing here ever panics or
// returns an error.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Count coerces an integer-like value. Thousands separators are stripped
// before parsing ("1,234" → 1234). nil, absent, and unparsable values all
// yield 0. ok is false whenever the input carried no usable number.
func Count(v any) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return int64(val), true
	case string:
		s := stripSeparators(val)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		// Some feeds send counts as "1234.0"
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// NullableCount is Count for fields where null is meaningful (ranks).
// nil stays nil rather than degrading to 0.
func NullableCount(v any) (*int64, bool) {
	if v == nil {
		return nil, true
	}
	n, ok := Count(v)
	if !ok {
		return nil, false
	}
	return &n, true
}

// Decimal coerces an arbitrary-precision decimal value (trade volume).
// Defaults to zero on failure or absence — never raises.
func Decimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case string:
		s := stripSeparators(val)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// Float coerces a real-valued field (scores, medians, day changes).
func Float(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := stripSeparators(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Flag passes through an upstream boolean, defaulting to false when the
// field is absent or carries anything else.
func Flag(v any) bool {
	b, _ := v.(bool)
	return b
}

// DateOnly parses the fixed-format date prefix (first 10 characters,
// YYYY-MM-DD) of a timestamp string. Unlike the coercions above this one
// returns an error: a series point without a valid date has no upsert key
// and must be dropped by the caller.
func DateOnly(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return time.Parse("2006-01-02", s)
}

// stripSeparators removes thousands-separator punctuation and surrounding
// whitespace before numeric parsing.
func stripSeparators(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}
