package dialect

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Driver-reported type names that hold arbitrary-precision numerics.
var decimalTypeNames = map[string]bool{
	"NUMERIC": true,
	"DECIMAL": true,
	"MONEY":   true,
}

// IsDecimalType reports whether typeName names a fixed-point numeric
// column whose values should be returned as floats.
func IsDecimalType(typeName string) bool {
	return decimalTypeNames[strings.ToUpper(typeName)]
}

// SerializeValue converts a scanned result value into a JSON-safe form.
// Adapters call it after handling their dialect-specific cases. The
// conversion never fails: values with no better representation fall back
// to a rendered string.
func SerializeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case string:
		return v
	case int:
		return v
	case int8:
		return v
	case int16:
		return v
	case int32:
		return v
	case int64:
		return v
	case uint:
		return v
	case uint8:
		return v
	case uint16:
		return v
	case uint32:
		return v
	case uint64:
		return v
	case float32:
		return v
	case float64:
		return v
	case time.Time:
		return FormatTime(v)
	case time.Duration:
		return FormatDuration(v)
	case []byte:
		return DecodeBytes(v)
	case map[string]any:
		return v
	case []any:
		return v
	case json.RawMessage:
		return decodeJSON([]byte(v))
	case *big.Int:
		if v.IsInt64() {
			return v.Int64()
		}
		return v.String()
	case *big.Float:
		f, _ := v.Float64()
		return f
	case *big.Rat:
		f, _ := v.Float64()
		return f
	case fmt.Stringer:
		return renderStringer(v)
	case error:
		return v.Error()
	default:
		return RenderText(value)
	}
}

// SerializeDecimal interprets a numeric value scanned from a fixed-point
// column as a float. Drivers typically deliver these as text or bytes.
func SerializeDecimal(value any) any {
	var text string
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return v
	case float32:
		return v
	case int64:
		return float64(v)
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return SerializeValue(value)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return text
	}
	return f
}

// FormatTime renders a timestamp in ISO 8601. Midnight values with no
// sub-day component still carry the full timestamp form so callers get a
// consistent shape per column type; adapters that know a column is a DATE
// use FormatDate instead.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatDate renders only the calendar date.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDuration renders a duration as HH:MM:SS, the interchange form for
// TIME columns. Negative durations keep a leading sign.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, (total/60)%60, total%60)
}

// DecodeBytes converts raw bytes into text when they form printable UTF-8,
// and into lowercase hex otherwise. NUL and other control bytes (except
// tab, newline, carriage return) force the hex form.
func DecodeBytes(b []byte) string {
	if !utf8.Valid(b) {
		return hex.EncodeToString(b)
	}
	for _, r := range string(b) {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return hex.EncodeToString(b)
		}
	}
	return string(b)
}

// SerializeJSON parses a JSON column value into its structural form.
// Unparseable payloads come back as the raw text.
func SerializeJSON(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return decodeJSON(v)
	case string:
		return decodeJSON([]byte(v))
	case json.RawMessage:
		return decodeJSON([]byte(v))
	default:
		return SerializeValue(value)
	}
}

func decodeJSON(raw []byte) any {
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}

// RenderText is the last-resort conversion for values no earlier rule
// claimed. A panicking String method must not take the whole result set
// down, so rendering recovers into the Go-syntax form.
func RenderText(value any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("%#v", value)
		}
	}()
	return fmt.Sprintf("%v", value)
}

func renderStringer(v fmt.Stringer) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("%#v", v)
		}
	}()
	return v.String()
}
