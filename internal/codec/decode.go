package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Output layouts for temporal families.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// dateTimeInputs are the textual layouts accepted for DATETIME/TIMESTAMP
// values that arrive unparsed.
var dateTimeInputs = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	DateTimeLayout,
}

// timeOfDay matches MySQL TIME text, whose hour part may exceed 24 or be negative.
var timeOfDay = regexp.MustCompile(`^-?\d{2,3}:\d{2}:\d{2}$`)

// Decode converts a raw driver value of the named column type into a
// JSON-ready value.
//
// SQL NULL decodes to nil without error. A value that cannot be represented
// in its family decodes to nil with an error wrapping ErrDecode; a type name
// outside the supported vocabulary decodes to nil with ErrUnsupportedType.
func Decode(typeName string, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	t := ParseType(typeName)
	var (
		v  any
		ok bool
	)
	switch t {
	case SignedInt:
		v, ok = decodeSigned(raw)
	case UnsignedInt:
		v, ok = decodeUnsigned(raw)
	case Float:
		v, ok = decodeFloat(raw)
	case Decimal:
		v, ok = decodeDecimal(raw)
	case Text, Enum:
		v, ok = decodeText(raw)
	case Binary:
		v, ok = decodeBinary(raw)
	case Bool:
		v, ok = decodeBool(raw)
	case Date:
		v, ok = decodeTemporal(raw, DateLayout, []string{DateLayout})
	case Time:
		v, ok = decodeTime(raw)
	case DateTime:
		v, ok = decodeTemporal(raw, DateTimeLayout, dateTimeInputs)
	case JSON:
		v, ok = decodeJSON(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typeName)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %T as %s", ErrDecode, raw, t)
	}
	return v, nil
}

// asText returns the textual form of byte and string values.
func asText(raw any) (string, bool) {
	switch v := raw.(type) {
	case []byte:
		return string(v), true
	case string:
		return v, true
	default:
		return "", false
	}
}

func decodeSigned(raw any) (any, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return nil, false
		}
		return int64(v), true
	case bool:
		if v {
			return int64(1), true
		}
		return int64(0), true
	}
	s, ok := asText(raw)
	if !ok {
		return nil, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

func decodeUnsigned(raw any) (any, bool) {
	switch v := raw.(type) {
	case uint64:
		return v, true
	case int64:
		if v < 0 {
			return nil, false
		}
		return uint64(v), true
	}
	s, ok := asText(raw)
	if !ok {
		return nil, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

func decodeFloat(raw any) (any, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	s, ok := asText(raw)
	if !ok {
		return nil, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// decodeDecimal keeps the exact literal so no precision is lost in transit.
func decodeDecimal(raw any) (any, bool) {
	switch v := raw.(type) {
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	s, ok := asText(raw)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	// Validate without converting: the literal is returned as-is.
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return nil, false
	}
	return s, true
}

func decodeText(raw any) (any, bool) {
	return asText(raw)
}

func decodeBinary(raw any) (any, bool) {
	switch v := raw.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(v), true
	case string:
		return base64.StdEncoding.EncodeToString([]byte(v)), true
	default:
		return nil, false
	}
}

func decodeBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case int64:
		return v != 0, true
	}
	s, ok := asText(raw)
	if !ok {
		return nil, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return b, true
}

// decodeTemporal formats time.Time values with out, and re-parses textual
// values with the accepted input layouts before formatting.
func decodeTemporal(raw any, out string, inputs []string) (any, bool) {
	if v, ok := raw.(time.Time); ok {
		return v.Format(out), true
	}
	s, ok := asText(raw)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range inputs {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format(out), true
		}
	}
	return nil, false
}

// decodeTime handles TIME columns, which drivers return as text because the
// value is a duration that can fall outside a single day.
func decodeTime(raw any) (any, bool) {
	if v, ok := raw.(time.Time); ok {
		return v.Format(TimeLayout), true
	}
	s, ok := asText(raw)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if !timeOfDay.MatchString(s) {
		return nil, false
	}
	return s, true
}

func decodeJSON(raw any) (any, bool) {
	var b []byte
	switch v := raw.(type) {
	case []byte:
		b = append([]byte(nil), v...)
	case string:
		b = []byte(v)
	default:
		return nil, false
	}
	if !json.Valid(b) {
		return nil, false
	}
	return json.RawMessage(b), true
}
