package normalize

import (
	"encoding/json"
	"strconv"
	"time"
)

// objectFields decodes a candidate element into a field map. A non-object
// element (string, number, null, array) yields a skip reason instead.
func objectFields(el json.RawMessage) (map[string]any, string) {
	var fields map[string]any
	if err := json.Unmarshal(el, &fields); err != nil {
		return nil, "not an object"
	}
	if fields == nil {
		return nil, "null element"
	}
	return fields, ""
}

// String returns the first present, string-typed field among keys.
// Non-string values are not coerced; the default wins.
func String(fields map[string]any, def string, keys ...string) string {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// Int returns the first present field among keys coerced to an int.
// JSON numbers are truncated; numeric-looking strings parse. Anything else
// falls back to the default.
func Int(fields map[string]any, def int, keys ...string) int {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n)
		case string:
			if parsed, err := strconv.Atoi(n); err == nil {
				return parsed
			}
		}
	}
	return def
}

// Bool returns the first present, bool-typed field among keys.
func Bool(fields map[string]any, def bool, keys ...string) bool {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return def
}

// Time parses the first present timestamp among keys. RFC 3339 strings
// and Unix-epoch numbers (seconds or milliseconds) are accepted.
func Time(fields map[string]any, def time.Time, keys ...string) time.Time {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch ts := v.(type) {
		case string:
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				return t
			}
		case float64:
			sec := int64(ts)
			if sec > 1e12 { // millisecond epoch
				return time.UnixMilli(sec).UTC()
			}
			if sec > 0 {
				return time.Unix(sec, 0).UTC()
			}
		}
	}
	return def
}
