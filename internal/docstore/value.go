package docstore

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Normalize folds the numeric and time representations produced by the
// different backends into int64, float64 and UTC time.Time.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n)
		}
		return float64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return float64(n)
	case float32:
		return Normalize(float64(n))
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n)
		}
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case time.Time:
		return n.UTC()
	default:
		return v
	}
}

func Equal(a, b any) bool {
	c, ok := Compare(a, b)
	return ok && c == 0
}

// Compare orders two scalar values. ok is false when the values are not
// comparable with each other.
func Compare(a, b any) (int, bool) {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return 0, a == nil && b == nil
	}

	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, y), true
		case float64:
			return cmpOrdered(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, float64(y)), true
		case float64:
			return cmpOrdered(x, y), true
		}
	case string:
		switch y := b.(type) {
		case string:
			return strings.Compare(x, y), true
		case time.Time:
			if parsed, err := time.Parse(time.RFC3339Nano, x); err == nil {
				return parsed.Compare(y), true
			}
		}
	case time.Time:
		switch y := b.(type) {
		case time.Time:
			return x.Compare(y), true
		case string:
			if parsed, err := time.Parse(time.RFC3339Nano, y); err == nil {
				return x.Compare(parsed), true
			}
		}
	case bool:
		if y, ok := b.(bool); ok {
			if x == y {
				return 0, true
			}
			if !x {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func CloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = Normalize(v)
	}
	return out
}

// Matches reports whether the document satisfies every filter of the query.
func Matches(doc *Document, filters []Filter) bool {
	for _, f := range filters {
		value, ok := doc.Fields[f.Field]
		if !ok {
			return false
		}
		c, comparable := Compare(value, f.Value)
		if !comparable {
			return false
		}
		switch f.Op {
		case OpEqual:
			if c != 0 {
				return false
			}
		case OpGreaterOrEqual:
			if c < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
