package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	pkgStrings "github.com/plgd-dev/assethub/pkg/strings"
)

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func coerceString(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	case bool, int, int32, int64, float32, float64:
		return fmt.Sprint(val), true
	}
	return nil, false
}

func coerceNumber(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

func coerceTime(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), true
	case string:
		val = strings.TrimSpace(val)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t.UTC(), true
			}
		}
	}
	return nil, false
}

func coerceBool(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}

// Coerce converts v to the Go type of the field type: string, float64, time.Time (UTC) or bool.
func Coerce(t FieldType, v interface{}) (interface{}, bool) {
	switch t {
	case String:
		return coerceString(v)
	case Number:
		return coerceNumber(v)
	case Time:
		return coerceTime(v)
	case Bool:
		return coerceBool(v)
	}
	return nil, false
}

func coerceList(t FieldType, v interface{}) ([]interface{}, bool) {
	var raw []interface{}
	switch val := v.(type) {
	case []interface{}:
		raw = val
	default:
		items, err := pkgStrings.ToSlice(v)
		if err != nil {
			return nil, false
		}
		raw = make([]interface{}, 0, len(items))
		for _, item := range items {
			raw = append(raw, item)
		}
	}
	values := make([]interface{}, 0, len(raw))
	for _, item := range raw {
		c, ok := Coerce(t, item)
		if !ok {
			return nil, false
		}
		values = append(values, c)
	}
	return values, true
}
