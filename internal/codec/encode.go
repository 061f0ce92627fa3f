package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// maxExactFloat is the largest magnitude at which every integer is exactly
// representable as a float64.
const maxExactFloat = 1 << 53

// EncodeForBind converts a JSON value into a driver bind argument.
//
// Strings bind as text and booleans as booleans. Numbers bind as the first of
// int64, uint64 and float64 that holds them exactly. Null binds as SQL NULL.
// Objects and arrays bind as their JSON text.
func EncodeForBind(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool, int64, uint64:
		return x
	case int:
		return int64(x)
	case json.Number:
		return encodeNumber(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) <= maxExactFloat {
			return int64(x)
		}
		return x
	case json.RawMessage:
		return string(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func encodeNumber(n json.Number) any {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
