package frame

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when parsing text into a time cell.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses s with the layouts readers accept.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCell converts text to a value of kind k. Blank text and text that
// does not parse are reported as null.
func ParseCell(k Kind, s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	switch k {
	case KindInt:
		if x, err := strconv.ParseInt(s, 10, 64); err == nil {
			return x, true
		}
	case KindFloat:
		if x, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(x) {
			return x, true
		}
	case KindBool:
		if x, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
			return x, true
		}
	case KindTime:
		if t, ok := ParseTime(s); ok {
			return t, true
		}
	case KindString:
		return s, true
	}
	return nil, false
}

// Coerce converts a decoded value (JSON, SQL driver or Parquet) to kind k.
func Coerce(k Kind, v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if k == KindString {
			return t, true
		}
		return ParseCell(k, t)
	case []byte:
		return Coerce(k, string(t))
	case json.Number:
		return ParseCell(k, t.String())
	}
	switch k {
	case KindInt:
		switch t := v.(type) {
		case int:
			return int64(t), true
		case int32:
			return int64(t), true
		case int64:
			return t, true
		case float64:
			if t == math.Trunc(t) {
				return int64(t), true
			}
		}
	case KindFloat:
		switch t := v.(type) {
		case float32:
			return float64(t), true
		case float64:
			return t, !math.IsNaN(t)
		case int:
			return float64(t), true
		case int32:
			return float64(t), true
		case int64:
			return float64(t), true
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, true
		}
	case KindTime:
		if tm, ok := v.(time.Time); ok {
			return tm, true
		}
	case KindString:
		switch t := v.(type) {
		case time.Time:
			return t.Format(time.RFC3339Nano), true
		case map[string]any, []any:
			b, err := json.Marshal(t)
			if err != nil {
				return nil, false
			}
			return string(b), true
		}
		return fmt.Sprint(v), true
	}
	return nil, false
}

// FormatCell renders a non-null cell as text for the text writers.
func FormatCell(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case string:
		return t
	}
	return fmt.Sprint(v)
}
