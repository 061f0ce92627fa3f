// Package codec converts between SQL column values and the dynamic JSON value
// model used by the gateway.
//
// Decoding (database to JSON) is driven by the column's declared type name as
// reported by the driver. ParseType normalises the name onto a closed set of
// families and Decode maps a raw driver value onto a JSON-ready Go value:
//
//	SignedInt    int64
//	UnsignedInt  uint64
//	Float        float64
//	Decimal      string (exact literal)
//	Text, Enum   string
//	Binary       string (standard base64)
//	Bool         bool
//	Date         "YYYY-MM-DD"
//	Time         "HH:MM:SS"
//	DateTime     "YYYY-MM-DD HH:MM:SS"
//	JSON         json.RawMessage
//
// A value that cannot be decoded becomes null. Decoding never aborts a row.
//
// Encoding (JSON to database) is driven by the JSON value alone; the target
// column's declared type is not consulted. See EncodeForBind.
//
// Row is an ordered column-to-value map. Its JSON form preserves key order in
// both directions, so the key order of the first row in a request body is the
// column order of the generated INSERT.
package codec
