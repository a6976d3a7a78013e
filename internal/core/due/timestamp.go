package due

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"time"
)

// Dater is implemented by store-native timestamp wrappers.
type Dater interface {
	ToDate() time.Time
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// CoerceToInstant resolves the shapes a reminder field may arrive in, tried in
// a fixed order: time.Time, *time.Time, Dater, a {seconds, nanoseconds} map,
// then RFC 3339 and local date strings. Instants are returned in loc; strings
// without an offset are read as civil time in loc. It reports false for nil,
// zero or unrecognised values.
func CoerceToInstant(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return inZone(x, loc)
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return inZone(*x, loc)
	case Dater:
		if isNilDater(x) {
			return time.Time{}, false
		}
		return inZone(x.ToDate(), loc)
	case map[string]any:
		return fromSecondsMap(x, loc)
	case string:
		return fromString(x, loc)
	case *string:
		if x == nil {
			return time.Time{}, false
		}
		return fromString(*x, loc)
	case []byte:
		return fromString(string(x), loc)
	}

	return time.Time{}, false
}

func inZone(t time.Time, loc *time.Location) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	return t.In(loc), true
}

func fromString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromSecondsMap(m map[string]any, loc *time.Location) (time.Time, bool) {
	secs, ok := firstNumber(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := firstNumber(m, "nanoseconds", "_nanoseconds")
	return time.Unix(secs, nanos).In(loc), true
}

func firstNumber(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if n, ok := toInt64(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func isNilDater(d Dater) bool {
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
