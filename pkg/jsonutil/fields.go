// Package jsonutil extracts typed values from untyped raw records.
// Open-data feeds are duck-typed: a field documented as a string may
// arrive as a number, coordinates may arrive as strings, and whole
// sub-objects may be missing. Every accessor checks shape before use
// and signals absence instead of panicking.
package jsonutil

import (
	"fmt"
	"strconv"
)

// StringField returns the value at key coerced to a string. Numbers and
// booleans are formatted; null, absent, and unconvertible values return "".
func StringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FloatField returns the value at key as a float64. Numeric strings are
// parsed. The second return is false when the field is absent, null, or
// not a number.
func FloatField(raw map[string]any, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MapField returns the value at key as a nested object, or nil when the
// field is absent or not an object.
func MapField(raw map[string]any, key string) map[string]any {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}
