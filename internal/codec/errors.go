package codec

import "errors"

// Sentinel errors for value conversion.
var (
	// ErrDecode is returned when a raw value cannot be represented in its
	// column's type family.
	ErrDecode = errors.New("codec: value cannot be decoded")

	// ErrUnsupportedType is returned for column types outside the supported
	// vocabulary.
	ErrUnsupportedType = errors.New("codec: unsupported column type")
)
