package utils

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the serialized form of date-only values.
const DateLayout = "2006-01-02"

// timestampLayout matches the millisecond ISO form the legacy service emits.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// NormalizeValue converts driver-specific values into the scalar set rows
// carry: string, int64, float64, bool, time.Time or nil.
func NormalizeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case []byte:
		return string(v)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Decimal128:
		return v.String()
	case primitive.ObjectID:
		return v.Hex()
	default:
		return val
	}
}

// FormatValue renders a row value as CSV cell text.
func FormatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		u := v.UTC()
		if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
			return u.Format(DateLayout)
		}
		return u.Format(timestampLayout)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ConvertDateTime parses the supported date and timestamp representations.
func ConvertDateTime(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case primitive.DateTime:
		return v.Time().UTC(), nil
	case string:
		formats := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02 15:04:05",
			DateLayout,
		}
		for _, f := range formats {
			if t, err := time.Parse(f, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse datetime: %q", v)
	case []byte:
		return ConvertDateTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to datetime", val)
	}
}

// DateOf returns midnight UTC of the calendar date written in val. For
// strings the leading YYYY-MM-DD is used as-is, so time-of-day and offset
// never move the date.
func DateOf(val interface{}) (time.Time, error) {
	if s, ok := val.(string); ok && len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t, nil
		}
	}
	t, err := ConvertDateTime(val)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
