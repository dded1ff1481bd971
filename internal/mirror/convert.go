package mirror

import (
	"strings"
	"time"
)

// dateLayouts are tried in order against a date string once any
// fractional-seconds suffix has been removed.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
}

// ConvertDateTime coerces a value bound for a date/time column. Native
// times pass through; strings are parsed against dateLayouts; anything
// unparsable is returned unchanged.
func ConvertDateTime(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x
	case []byte:
		return convertDateString(string(x))
	case string:
		return convertDateString(x)
	default:
		return v
	}
}

func convertDateString(s string) any {
	trimmed := stripFraction(strings.TrimSpace(s))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	return s
}

// stripFraction drops ".ffffff" after a seconds field.
func stripFraction(s string) string {
	i := strings.LastIndexByte(s, '.')
	if i > 0 && isDigits(s[i+1:]) && strings.Count(s[:i], ":") == 2 {
		return s[:i]
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ConvertBoolean maps SQLite's 0/1 integers onto a boolean column.
func ConvertBoolean(v any) any {
	switch x := v.(type) {
	case int64:
		return x != 0
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return v
	}
}

// convertValue applies the coercion a destination column's declared type
// calls for. NULLs pass through.
func convertValue(v any, dst Column) any {
	if v == nil {
		return nil
	}
	switch {
	case IsDateTimeType(dst.Type):
		return ConvertDateTime(v)
	case IsBooleanType(dst.Type):
		return ConvertBoolean(v)
	default:
		return v
	}
}
